// Package pathcache resolves command names against PATH and maintains a
// short-lived cache of every executable name PATH currently exposes, for use
// by completion. Command resolution does not consult the cache.
package pathcache

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a listing is reused before PATH is rescanned.
const DefaultTTL = time.Second

// Cache resolves executables on PATH and memoizes the full listing of
// executable names for TTL, so repeated completion requests during a single
// typing burst don't each re-stat every PATH directory.
type Cache struct {
	mu    sync.Mutex
	dirs  []string
	ttl   time.Duration
	names []string
	at    time.Time

	now func() time.Time
}

// New builds a Cache over the given PATH directories (in search order).
func New(dirs []string) *Cache {
	return &Cache{dirs: dirs, ttl: DefaultTTL, now: time.Now}
}

// FromEnv builds a Cache from the current PATH environment variable.
func FromEnv() *Cache {
	return New(SplitPath(os.Getenv("PATH")))
}

// SetTTL overrides how long a listing is reused. Safe to call at any
// time; it does not itself invalidate the current listing.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// SplitPath splits a PATH-style string into directories, discarding empty
// entries.
func SplitPath(path string) []string {
	var dirs []string
	for _, d := range filepath.SplitList(path) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Resolve reports the absolute path of the first PATH directory containing
// an executable, regular file named name. It always stats PATH fresh; only
// the full listing used for completion is cached.
func (c *Cache) Resolve(name string) (string, bool) {
	for _, dir := range c.dirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil {
			if info.Mode().IsRegular() && info.Mode()&0111 != 0 {
				return candidate, true
			}
		}
	}
	return "", false
}

// ListAll returns every executable name visible across PATH, sorted and
// deduplicated. The result is memoized for the cache's TTL.
func (c *Cache) ListAll() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.names != nil && now.Sub(c.at) < c.ttl {
		return c.names
	}

	seen := make(map[string]struct{})
	for _, dir := range c.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() && info.Mode()&0111 != 0 {
				seen[e.Name()] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	c.names = names
	c.at = now
	return names
}

// Invalidate forces the next ListAll call to rescan PATH.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = nil
}
