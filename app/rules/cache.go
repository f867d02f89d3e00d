package rules

import (
	"log/slog"
	"sync"
)

// Cache holds the current rule set snapshot. Readers always see a complete
// set; Reload swaps the snapshot atomically and keeps the previous one when
// the file has become unreadable or malformed.
type Cache struct {
	path string
	mu   sync.RWMutex
	set  *Set
}

func NewCache(path string) *Cache {
	return &Cache{
		path: path,
		set:  NewSet(nil),
	}
}

// Run performs the initial load. Unlike Reload, a failure here is returned to
// the caller: starting with a broken rules file is a configuration error.
func (c *Cache) Run() error {
	set, err := Load(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.set = set
	c.mu.Unlock()

	slog.Debug("Rules loaded", "file", c.path,
		"keywords", set.CountByKind(KindKeyword),
		"authors", set.CountByKind(KindAuthor))

	return nil
}

func (c *Cache) Reload() error {
	set, err := Load(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.set = set
	c.mu.Unlock()

	slog.Info("Rules reloaded", "file", c.path, "rules", set.Len())

	return nil
}

func (c *Cache) Get() *Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

func (c *Cache) Path() string {
	return c.path
}
