// Package cache provides a persistent capture-time cache backed by Badger.
// Decoding EXIF requires opening every image, so repeat runs over a library
// that is already named consult the cache instead, validating each entry
// against the file's current size and modification time.
package cache

import (
	"bytes"
	"encoding/gob"
	"path/filepath"
	"time"
)

// CacheVersion is incremented when the cache format changes.
const CacheVersion = 1

// keyPrefix namespaces capture-time keys within the database.
const keyPrefix = "capture\x00"

// CachedEntry represents the cached capture time of one file.
type CachedEntry struct {
	Version  int
	Size     int64  // File size in bytes when the capture time was read
	Mtime    int64  // Modification time as UnixNano
	Captured string // Capture time as RFC 3339, keeping the wall clock and offset
}

// Encode serializes the entry to bytes using gob.
func (e *CachedEntry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *CachedEntry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Matches reports whether the entry was recorded for a file with the given
// size and modification time.
func (e *CachedEntry) Matches(size int64, mtime time.Time) bool {
	return e.Version == CacheVersion && e.Size == size && e.Mtime == mtime.UnixNano()
}

// CaptureTime returns the cached capture time. The wall clock and UTC
// offset are preserved; the location name is not.
func (e *CachedEntry) CaptureTime() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Captured)
}

// NewEntry builds an entry for a file of the given size and modification
// time captured at captured.
func NewEntry(size int64, mtime, captured time.Time) *CachedEntry {
	return &CachedEntry{
		Version:  CacheVersion,
		Size:     size,
		Mtime:    mtime.UnixNano(),
		Captured: captured.Format(time.RFC3339),
	}
}

// MakeKey creates a cache key from an absolute file path.
func MakeKey(path string) []byte {
	return []byte(keyPrefix + filepath.Clean(path))
}

// MakeKeyPrefix returns the prefix for all keys under a directory.
// An empty dir matches every key.
func MakeKeyPrefix(dir string) []byte {
	if dir == "" {
		return []byte(keyPrefix)
	}
	dir = filepath.Clean(dir)
	if dir != string(filepath.Separator) {
		dir += string(filepath.Separator)
	}
	return []byte(keyPrefix + dir)
}
