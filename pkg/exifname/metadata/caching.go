package metadata

import (
	"fmt"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/cache"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/spf13/afero"
)

// CachingReader serves capture times from a persistent cache and falls back
// to another Reader on a miss. Entries are validated against the file's
// current size and modification time.
type CachingReader struct {
	next  Reader
	cache *cache.Cache
	fs    afero.Fs

	hits   int64
	misses int64
}

// NewCachingReader wraps next with the given cache. Files are stat'ed
// through fs.
func NewCachingReader(next Reader, c *cache.Cache, fs afero.Fs) *CachingReader {
	return &CachingReader{next: next, cache: c, fs: fs}
}

// CaptureTime returns the cached capture time of path or reads and caches it.
func (r *CachingReader) CaptureTime(path string) (time.Time, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", types.ErrMetadataUnavailable, path, err)
	}

	if t, ok := r.cache.Lookup(path, info.Size(), info.ModTime()); ok {
		r.hits++
		return t, nil
	}
	r.misses++

	t, err := r.next.CaptureTime(path)
	if err != nil {
		return time.Time{}, err
	}

	if err := r.cache.Remember(path, info.Size(), info.ModTime(), t); err != nil {
		logger.Warn("failed to cache capture time", "path", path, "error", err)
	}
	return t, nil
}

// Moved re-keys the cache entry of a renamed file.
func (r *CachingReader) Moved(from, to string) {
	if err := r.cache.Move(from, to); err != nil {
		logger.Warn("failed to move cache entry", "from", from, "to", to, "error", err)
	}
}

// Stats returns the number of cache hits and misses so far.
func (r *CachingReader) Stats() (hits, misses int64) {
	return r.hits, r.misses
}

// Ensure CachingReader implements Reader.
var _ Reader = (*CachingReader)(nil)
