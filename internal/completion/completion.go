// Package completion implements the shell's (prefix, state) completion
// protocol: called repeatedly with state 0, 1, 2, ... until it returns ok
// == false, it yields either the longest common prefix of the candidates
// (when that extends the given prefix) or every candidate in turn.
package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tanishpoddar/shellcraft/internal/pathcache"
)

// Engine answers completion requests for a line prefix. When the prefix
// contains a path separator it completes filesystem entries; otherwise it
// completes against the union of builtin names and PATH executables.
type Engine struct {
	Builtins []string
	Cache    *pathcache.Cache

	// ReadDir is overridable for tests; defaults to os.ReadDir.
	ReadDir func(dir string) ([]os.DirEntry, error)
}

// New builds an Engine over the given builtin name set and path cache.
func New(builtins []string, cache *pathcache.Cache) *Engine {
	return &Engine{
		Builtins: builtins,
		Cache:    cache,
		ReadDir:  os.ReadDir,
	}
}

// Complete implements the (prefix, state) protocol. When the candidates'
// longest common prefix is longer than prefix, state 0 returns it (an
// "advance" the line editor should insert without yet showing the full
// list) and every later state reports ok false. Otherwise state n returns
// the n-th candidate in sorted order, and ok is false once state has run
// past the last candidate, signaling the caller to stop asking.
func (e *Engine) Complete(prefix string, state int) (completion string, ok bool) {
	matches := e.candidates(prefix)
	if len(matches) == 0 {
		return "", false
	}

	if len(matches) == 1 {
		if state == 0 {
			// A single match commits the completion, so it gets a
			// trailing space the way a shell completion normally does.
			return matches[0] + " ", true
		}
		return "", false
	}

	lcp := longestCommonPrefix(matches)
	if len(lcp) > len(prefix) {
		if state == 0 {
			return lcp, true
		}
		return "", false
	}

	if state < len(matches) {
		return matches[state], true
	}
	return "", false
}

// Candidates returns the full, sorted candidate list for prefix, useful
// for callers (like a line editor) that want to display every match at
// once instead of stepping through the (prefix, state) protocol.
func (e *Engine) Candidates(prefix string) []string {
	return e.candidates(prefix)
}

func (e *Engine) candidates(prefix string) []string {
	if strings.ContainsRune(prefix, filepath.Separator) {
		return e.completeFilename(prefix)
	}
	return e.completeCommand(prefix)
}

func (e *Engine) completeCommand(prefix string) []string {
	seen := make(map[string]struct{})
	var matches []string

	for _, b := range e.Builtins {
		if strings.HasPrefix(b, prefix) {
			matches = append(matches, b)
			seen[b] = struct{}{}
		}
	}

	if e.Cache != nil {
		for _, name := range e.Cache.ListAll() {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			matches = append(matches, name)
			seen[name] = struct{}{}
		}
	}

	sort.Strings(matches)
	return matches
}

// completeFilename is only reached via candidates() when prefix contains a
// separator, so splitDirBase always yields a non-empty dir ("/" at worst).
func (e *Engine) completeFilename(prefix string) []string {
	dir, base := splitDirBase(prefix)

	entries, err := e.ReadDir(dir)
	if err != nil {
		return nil
	}

	var matches []string
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name(), base) {
			matches = append(matches, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(matches)
	return matches
}

// splitDirBase splits a path-with-separator prefix into its directory part
// ("/" for a prefix whose only separator is the leading one) and basename
// part. Only called with prefixes known to contain a separator.
func splitDirBase(prefix string) (dir, base string) {
	idx := strings.LastIndexByte(prefix, filepath.Separator)
	if idx < 0 {
		return "", prefix
	}
	dirPart := prefix[:idx]
	base = prefix[idx+1:]
	if dirPart == "" {
		return string(filepath.Separator), base
	}
	return dirPart, base
}

// longestCommonPrefix returns the longest string that is a prefix of every
// entry in strs. Returns "" for an empty slice.
func longestCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	prefix := strs[0]
	for _, s := range strs[1:] {
		prefix = commonPrefix(prefix, s)
		if prefix == "" {
			break
		}
	}
	return prefix
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
