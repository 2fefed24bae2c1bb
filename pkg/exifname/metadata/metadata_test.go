package metadata

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/cache"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tiffWithCaptureTime builds a minimal little-endian TIFF whose Exif IFD
// carries DateTimeOriginal = stamp ("YYYY:MM:DD HH:MM:SS").
func tiffWithCaptureTime(t *testing.T, stamp string) []byte {
	t.Helper()
	require.Len(t, stamp, 19)

	var buf bytes.Buffer
	le := binary.LittleEndian
	put := func(v interface{}) {
		require.NoError(t, binary.Write(&buf, le, v))
	}

	// Header: byte order, magic, offset of IFD0.
	buf.WriteString("II")
	put(uint16(42))
	put(uint32(8))

	// IFD0 at 8: a single ExifIFDPointer entry pointing at 26.
	put(uint16(1))
	put(uint16(0x8769))
	put(uint16(4))
	put(uint32(1))
	put(uint32(26))
	put(uint32(0))

	// Exif IFD at 26: DateTimeOriginal, ASCII, 20 bytes at offset 44.
	put(uint16(1))
	put(uint16(0x9003))
	put(uint16(2))
	put(uint32(20))
	put(uint32(44))
	put(uint32(0))

	require.Equal(t, 44, buf.Len())
	buf.WriteString(stamp)
	buf.WriteByte(0)
	return buf.Bytes()
}

func TestExifReaderCaptureTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/IMG001.jpg", tiffWithCaptureTime(t, "2023:03:05 14:07:22"), 0o644))

	got, err := NewExifReader(fs).CaptureTime("/photos/IMG001.jpg")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 3, 5, 14, 7, 22, 0, time.Local)), "got %v", got)
}

func TestExifReaderUnavailable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/broken.jpg", []byte("not an image at all"), 0o644))

	tests := map[string]string{
		"no exif": "/photos/broken.jpg",
		"missing": "/photos/missing.jpg",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewExifReader(fs).CaptureTime(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrMetadataUnavailable)
			assert.Contains(t, err.Error(), path)
		})
	}
}

// countingReader returns a fixed time and counts calls.
type countingReader struct {
	t     time.Time
	calls int
}

func (r *countingReader) CaptureTime(string) (time.Time, error) {
	r.calls++
	return r.t, nil
}

func openCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCachingReaderHitsAfterFirstRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/a.jpg", []byte("a"), 0o644))

	want := time.Date(2023, 3, 5, 14, 7, 22, 0, time.UTC)
	next := &countingReader{t: want}
	r := NewCachingReader(next, openCache(t), fs)

	for i := 0; i < 3; i++ {
		got, err := r.CaptureTime("/photos/a.jpg")
		require.NoError(t, err)
		assert.True(t, got.Equal(want))
	}
	assert.Equal(t, 1, next.calls)

	hits, misses := r.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachingReaderInvalidatesOnChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/a.jpg", []byte("a"), 0o644))

	next := &countingReader{t: time.Date(2023, 3, 5, 14, 7, 22, 0, time.UTC)}
	r := NewCachingReader(next, openCache(t), fs)

	_, err := r.CaptureTime("/photos/a.jpg")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/photos/a.jpg", []byte("longer content"), 0o644))
	_, err = r.CaptureTime("/photos/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachingReaderMoved(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/a.jpg", []byte("a"), 0o644))

	next := &countingReader{t: time.Date(2023, 3, 5, 14, 7, 22, 0, time.UTC)}
	r := NewCachingReader(next, openCache(t), fs)

	_, err := r.CaptureTime("/photos/a.jpg")
	require.NoError(t, err)

	to := "/photos/2023-03-05 14.07.22.jpg"
	require.NoError(t, fs.Rename("/photos/a.jpg", to))
	r.Moved("/photos/a.jpg", to)

	_, err = r.CaptureTime(to)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestCachingReaderMissingFile(t *testing.T) {
	r := NewCachingReader(&countingReader{}, openCache(t), afero.NewMemMapFs())

	_, err := r.CaptureTime("/photos/gone.jpg")
	assert.ErrorIs(t, err, types.ErrMetadataUnavailable)
}
