// Package walker drives a rename run over a directory tree. Each directory
// is listed, its images are resolved as one batch and its subdirectories are
// then processed independently, so collision numbering never crosses a
// directory boundary.
package walker

import (
	"io"

	"github.com/jamesainslie/exifname/pkg/exifname/fsys"
	"github.com/jamesainslie/exifname/pkg/exifname/metadata"
)

// NoticeFormat is the line written for every entry that is not an image.
const NoticeFormat = "Ignoring non-image file: %s\n"

// Options configures the walker.
type Options struct {
	// FS lists and renames files. Defaults to the local disk.
	FS fsys.FS

	// Reader provides capture times. Defaults to an EXIF reader on the
	// local disk.
	Reader metadata.Reader

	// Notices receives one line per ignored entry. Defaults to io.Discard.
	Notices io.Writer

	// OnRename is called after every rename, including displacements.
	OnRename func(from, to string)

	// OnDirectory is called when a directory is about to be processed.
	OnDirectory func(dir string)
}

// Validate fills in defaults for unset options.
func (o *Options) Validate() error {
	if o.FS == nil {
		o.FS = fsys.NewOS()
	}
	if o.Reader == nil {
		if a, ok := o.FS.(*fsys.AferoFS); ok {
			o.Reader = metadata.NewExifReader(a.Afero())
		}
	}
	if o.Notices == nil {
		o.Notices = io.Discard
	}
	return nil
}
