package walker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/naming"
	"github.com/jamesainslie/exifname/pkg/exifname/resolver"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// logger is the package-level logger for tree traversal.
var logger = logging.Get("walker")

// ErrNoReader is returned when no metadata reader is configured and none
// can be derived from the filesystem.
var ErrNoReader = errors.New("no metadata reader configured")

// Walker renames the images of a directory tree.
type Walker struct {
	opts     Options
	resolver *resolver.Resolver
	report   *types.RunReport
}

// New creates a Walker with the given options. Defaults are applied for
// unset options.
func New(opts Options) *Walker {
	_ = opts.Validate()
	return &Walker{
		opts:     opts,
		resolver: resolver.New(opts.FS),
	}
}

// Run processes root and every directory below it. It stops at the first
// error; renames already performed stay in place and are listed in the
// returned report. Cancellation is checked before each directory.
func (w *Walker) Run(ctx context.Context, root string) (*types.RunReport, error) {
	if w.opts.Reader == nil {
		return nil, ErrNoReader
	}

	start := time.Now()
	w.report = &types.RunReport{
		Root:      filepath.Clean(root),
		StartedAt: start,
	}

	logger.Info("run started", "root", w.report.Root)
	err := w.walk(ctx, w.report.Root)
	w.report.Elapsed = time.Since(start)

	if err != nil {
		logger.Error("run aborted",
			"root", w.report.Root,
			"renamed", len(w.report.Renames),
			"error", err)
		return w.report, err
	}

	logger.Info("run complete",
		"root", w.report.Root,
		"directories", w.report.Directories,
		"images", w.report.Images,
		"renamed", w.report.RenamedFiles(),
		"skipped", w.report.Skipped,
		"elapsed", w.report.Elapsed)
	return w.report, nil
}

// walk processes dir as one batch, then each of its subdirectories.
func (w *Walker) walk(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stopped before %s: %w", dir, err)
	}
	if w.opts.OnDirectory != nil {
		w.opts.OnDirectory(dir)
	}

	entries, err := w.opts.FS.ReadDir(dir)
	if err != nil {
		return err
	}
	w.report.Directories++

	// Only images may be moved; every other name is reserved so a
	// directory or link named like a target is never displaced.
	idx := resolver.NewIndex(dir)
	var subdirs []string
	var images []types.FileEntry
	for _, e := range entries {
		switch {
		case e.Kind == types.KindDirectory:
			idx.Reserve(e.Name)
			subdirs = append(subdirs, e.Path)
		case e.Kind == types.KindRegular && naming.IsImage(e.Name):
			idx.Claim(e.Name)
			images = append(images, e)
		default:
			idx.Reserve(e.Name)
			w.ignore(e.Path)
		}
	}

	if err := w.renameBatch(idx, images); err != nil {
		return err
	}

	for _, sub := range subdirs {
		if err := w.walk(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// renameBatch reads the capture time of every image before any rename, so
// an unreadable file leaves the directory untouched.
func (w *Walker) renameBatch(idx *resolver.Index, images []types.FileEntry) error {
	if len(images) == 0 {
		return nil
	}

	batch := make([]resolver.Item, 0, len(images))
	for _, img := range images {
		captured, err := w.opts.Reader.CaptureTime(img.Path)
		if err != nil {
			return err
		}
		batch = append(batch, resolver.Item{Path: img.Path, Captured: captured})
		w.report.Images++
		w.report.ImageBytes += img.Size
	}

	outcomes, err := w.resolver.Apply(idx, batch)
	w.record(outcomes)
	if err != nil {
		return err
	}

	logger.Debug("directory processed", "dir", idx.Dir(), "images", len(images))
	return nil
}

// record adds outcomes to the report and fires the rename hook.
func (w *Walker) record(outcomes []resolver.Outcome) {
	for _, out := range outcomes {
		if out.Disposition == types.Skipped {
			w.report.Skipped++
			continue
		}
		if d := out.Displaced; d != nil {
			w.report.Renames = append(w.report.Renames, types.Rename{
				From:         d.From,
				To:           d.To,
				Captured:     out.Captured,
				Disposition:  out.Disposition,
				Displacement: true,
			})
			w.renamed(d.From, d.To)
		}
		w.report.Renames = append(w.report.Renames, types.Rename{
			From:        out.Path,
			To:          out.Final,
			Captured:    out.Captured,
			Disposition: out.Disposition,
		})
		w.renamed(out.Path, out.Final)
	}
}

func (w *Walker) renamed(from, to string) {
	if w.opts.OnRename != nil {
		w.opts.OnRename(from, to)
	}
}

func (w *Walker) ignore(path string) {
	w.report.Ignored = append(w.report.Ignored, path)
	logger.Debug("ignoring non-image entry", "path", path)
	fmt.Fprintf(w.opts.Notices, NoticeFormat, path)
}
