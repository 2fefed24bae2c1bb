package cache

import (
	"errors"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/logging"
)

// logger is the package-level logger for cache operations.
var logger = logging.Get("cache")

// Cache provides high-level capture-time caching for exifname.
type Cache struct {
	store *Store
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}

	return &Cache{store: store}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Lookup returns the cached capture time for path if an entry exists and
// was recorded for a file with the same size and modification time.
func (c *Cache) Lookup(path string, size int64, mtime time.Time) (time.Time, bool) {
	entry, err := c.store.Get(path)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("cache read failed", "path", path, "error", err)
		}
		return time.Time{}, false
	}

	if !entry.Matches(size, mtime) {
		logger.Debug("stale cache entry", "path", path)
		return time.Time{}, false
	}

	captured, err := entry.CaptureTime()
	if err != nil {
		logger.Warn("corrupt cache entry", "path", path, "error", err)
		return time.Time{}, false
	}
	return captured, true
}

// Remember records the capture time of path.
func (c *Cache) Remember(path string, size int64, mtime, captured time.Time) error {
	return c.store.Put(path, NewEntry(size, mtime, captured))
}

// Move follows a rename so the entry stays valid under the new path.
func (c *Cache) Move(from, to string) error {
	return c.store.Move(from, to)
}

// Count returns the number of cached entries under dir ("" for all).
func (c *Cache) Count(dir string) (int, error) {
	return c.store.Count(dir)
}

// Clear removes all cached entries under dir.
func (c *Cache) Clear(dir string) error {
	return c.store.DeletePrefix(dir)
}

// ClearAll removes all cached entries.
func (c *Cache) ClearAll() error {
	return c.store.DeletePrefix("")
}
