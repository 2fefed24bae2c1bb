// Package census counts what a rename run would touch without touching
// anything. It walks the tree in parallel with fastwalk, which is safe
// because nothing is renamed.
package census

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/naming"
)

// logger is the package-level logger for the census.
var logger = logging.Get("census")

// Result holds the counts of a census.
type Result struct {
	Root        string        `json:"root"`
	Directories int64         `json:"directories"`
	Images      int64         `json:"images"`
	ImageBytes  int64         `json:"image_bytes"`
	Named       int64         `json:"named"`
	Ignored     int64         `json:"ignored"`
	Errors      int64         `json:"errors"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Pending returns the number of images whose name is not yet in target
// format.
func (r *Result) Pending() int64 {
	return r.Images - r.Named
}

// counters are updated concurrently by the walk callbacks.
type counters struct {
	dirs, images, bytes, named, ignored, errors atomic.Int64
}

// Count walks root and classifies every entry the way a rename run would.
// Names are checked against the target format only; capture times are not
// read, so a named file may still be renamed by a run.
func Count(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	var c counters
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.errors.Add(1)
			logger.Warn("census walk error", "path", path, "error", err)
			return nil
		}

		switch {
		case d.IsDir():
			c.dirs.Add(1)
		case d.Type().IsRegular() && naming.IsImage(d.Name()):
			c.images.Add(1)
			if naming.LooksNamed(d.Name()) {
				c.named.Add(1)
			}
			if fi, err := d.Info(); err == nil {
				c.bytes.Add(fi.Size())
			}
		default:
			c.ignored.Add(1)
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("walking %s: %w", abs, walkErr)
	}

	r := &Result{
		Root:        abs,
		Directories: c.dirs.Load(),
		Images:      c.images.Load(),
		ImageBytes:  c.bytes.Load(),
		Named:       c.named.Load(),
		Ignored:     c.ignored.Load(),
		Errors:      c.errors.Load(),
		Elapsed:     time.Since(start),
	}
	logger.Debug("census complete", "root", abs, "images", r.Images, "pending", r.Pending())
	return r, nil
}
