// Package metadata reads capture timestamps from image files.
package metadata

import (
	"fmt"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// logger is the package-level logger for metadata reads.
var logger = logging.Get("metadata")

// Reader returns the capture timestamp of a file.
type Reader interface {
	// CaptureTime returns the capture time of the file at path, truncated
	// to the second. It fails with types.ErrMetadataUnavailable when the
	// file has no readable capture timestamp.
	CaptureTime(path string) (time.Time, error)
}

// ExifReader reads DateTimeOriginal (falling back to DateTime) from the
// EXIF block of JPEG and TIFF files.
type ExifReader struct {
	fs afero.Fs
}

// NewExifReader returns a reader that opens files through fs.
func NewExifReader(fs afero.Fs) *ExifReader {
	return &ExifReader{fs: fs}
}

// CaptureTime decodes the EXIF block of path and returns its capture time.
func (r *ExifReader) CaptureTime(path string) (time.Time, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", types.ErrMetadataUnavailable, path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: decoding exif: %w", types.ErrMetadataUnavailable, path, err)
	}

	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", types.ErrMetadataUnavailable, path, err)
	}

	logger.Debug("capture time read", "path", path, "captured", t)
	return t.Truncate(time.Second), nil
}

// Ensure ExifReader implements Reader.
var _ Reader = (*ExifReader)(nil)
