// Package history implements the shell's append-only command log: the
// in-memory list used for recall and listing, and the three file
// operations a history builtin exposes (write_all, read_append,
// append_new).
package history

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Log is an append-only record of entered command lines, plus the
// watermark tracking how much of it has already been flushed by the most
// recent append-only write.
type Log struct {
	entries      []string
	appendedUpTo int
}

// New returns an empty history log.
func New() *Log {
	return &Log{}
}

// Push records a new command line. Callers are responsible for not
// pushing blank lines, per spec (history only records non-empty input).
func (l *Log) Push(line string) {
	l.entries = append(l.entries, line)
}

// Entries returns every recorded line, oldest first. The returned slice
// must not be mutated by the caller.
func (l *Log) Entries() []string {
	return l.entries
}

// Len reports how many lines are recorded.
func (l *Log) Len() int {
	return len(l.entries)
}

// LastN returns the final n entries (or all of them if n exceeds the
// log's length), along with the 1-based index the first of them occupies.
// n <= 0 means "all entries".
func (l *Log) LastN(n int) (entries []string, startIndex int) {
	total := len(l.entries)
	start := 0
	if n > 0 {
		start = total - n
		if start < 0 {
			start = 0
		}
	}
	return l.entries[start:], start + 1
}

// ReadFile loads lines from path, appending each non-blank one to the log
// (read_append: used both for startup HISTFILE loading and `history -r`).
// It does not reset appendedUpTo.
func (l *Log) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		l.entries = append(l.entries, line)
	}
	return errors.Wrapf(scanner.Err(), "cannot read %s", path)
}

// WriteFile overwrites path with every recorded entry, one per line
// (write_all: used both for `history -w` and history persistence on exit).
func (l *Log) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range l.entries {
		if _, err := w.WriteString(e + "\n"); err != nil {
			return errors.Wrapf(err, "cannot write %s", path)
		}
	}
	return errors.Wrapf(w.Flush(), "cannot write %s", path)
}

// AppendNewFile appends only the entries recorded since the last
// AppendNewFile call to path, then advances the watermark (append_new:
// `history -a`).
func (l *Log) AppendNewFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "cannot append %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range l.entries[l.appendedUpTo:] {
		if _, err := w.WriteString(e + "\n"); err != nil {
			return errors.Wrapf(err, "cannot append %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "cannot append %s", path)
	}
	l.appendedUpTo = len(l.entries)
	return nil
}
