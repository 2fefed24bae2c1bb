// Package resolver decides the final name of every image in a directory and
// performs the renames.
//
// Files are processed in batch order and each rename is applied before the
// next file is considered, so later files observe earlier renames. Files
// sharing a capture time are numbered with collision suffixes:
//
//	first file           2023-03-05 14.07.22.jpg
//	second file          2023-03-05 14.07.22-2.jpg  (first moves to -1)
//	third and later      2023-03-05 14.07.22-3.jpg, -4, ...
//
// Only images are ever displaced. A directory or other entry holding a target
// name is reserved in the Index and the file is numbered around it.
package resolver

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/fsys"
	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/naming"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// logger is the package-level logger for rename decisions.
var logger = logging.Get("resolver")

// Item is one file of a batch together with its capture time.
type Item struct {
	Path     string
	Captured time.Time
}

// Move is a single rename performed on disk.
type Move struct {
	From string
	To   string
}

// Outcome describes what happened to one item of a batch.
type Outcome struct {
	// Path is the path the item had when its turn came. It differs from the
	// original path when an earlier item displaced this one.
	Path string

	// Final is the path the item ends up at.
	Final string

	// Target is the plain target name for the item's capture time.
	Target string

	// Captured is the capture time the name was derived from.
	Captured time.Time

	// Disposition is the terminal state of the item.
	Disposition types.Disposition

	// Displaced is the rename of the previous occupant, set for
	// RenamedWithDisplacement.
	Displaced *Move
}

// Renames returns the renames of the outcome in the order they happened.
func (o Outcome) Renames() []Move {
	var moves []Move
	if o.Displaced != nil {
		moves = append(moves, *o.Displaced)
	}
	if o.Disposition.Renamed() {
		moves = append(moves, Move{From: o.Path, To: o.Final})
	}
	return moves
}

// Resolver applies the collision policy through a filesystem.
type Resolver struct {
	fs fsys.FS
}

// New returns a resolver that renames through fs.
func New(fs fsys.FS) *Resolver {
	return &Resolver{fs: fs}
}

// Apply resolves and renames every item of batch, in order. All items must
// live in idx.Dir(). The index is updated with every rename.
//
// On error the outcomes of the items completed so far are returned; renames
// already performed are not undone.
func (r *Resolver) Apply(idx *Index, batch []Item) ([]Outcome, error) {
	// Current path of every batch item, so an item displaced by an earlier
	// one is picked up at its new name.
	current := make(map[string]int, len(batch))
	paths := make([]string, len(batch))
	for i, item := range batch {
		if dir := filepath.Dir(item.Path); dir != filepath.Clean(idx.Dir()) {
			return nil, fmt.Errorf("%w: %s is not in %s", types.ErrFileSystem, item.Path, idx.Dir())
		}
		paths[i] = item.Path
		current[filepath.Base(item.Path)] = i
	}

	outcomes := make([]Outcome, 0, len(batch))
	for i, item := range batch {
		out, err := r.resolve(idx, paths[i], item.Captured, func(from, to string) {
			if j, ok := current[from]; ok {
				delete(current, from)
				current[to] = j
				paths[j] = filepath.Join(idx.Dir(), to)
			}
		})
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// resolve handles one file. moved is called for every name that changes.
//
// A file already carrying its target name or any of its -N variants is
// skipped, not only an exact match, so a second run over a numbered
// directory changes nothing.
func (r *Resolver) resolve(idx *Index, path string, captured time.Time, moved func(from, to string)) (Outcome, error) {
	name := filepath.Base(path)
	base := naming.Base(captured)
	out := Outcome{
		Path:     path,
		Final:    path,
		Target:   naming.TargetName(captured),
		Captured: captured,
	}

	if naming.Conforms(name, base) {
		out.Disposition = types.Skipped
		logger.Debug("already named", "path", path)
		return out, nil
	}

	slot, displace := nextSlot(idx, base)
	if displace {
		from := naming.Variant(base, 0)
		to := naming.Variant(base, 1)
		if err := r.rename(idx, from, to); err != nil {
			return out, err
		}
		moved(from, to)
		out.Displaced = &Move{From: filepath.Join(idx.Dir(), from), To: filepath.Join(idx.Dir(), to)}
	}

	final := naming.Variant(base, slot)
	if err := r.rename(idx, name, final); err != nil {
		return out, err
	}
	moved(name, final)
	out.Final = filepath.Join(idx.Dir(), final)

	switch {
	case displace:
		out.Disposition = types.RenamedWithDisplacement
	case slot > 0:
		out.Disposition = types.RenamedAppended
	default:
		out.Disposition = types.RenamedDirect
	}

	logger.Debug("renamed",
		"from", path,
		"to", out.Final,
		"disposition", out.Disposition.String())
	return out, nil
}

// rename renames within idx.Dir() and records the move in the index.
func (r *Resolver) rename(idx *Index, from, to string) error {
	oldpath := filepath.Join(idx.Dir(), from)
	newpath := filepath.Join(idx.Dir(), to)
	if err := r.fs.Rename(oldpath, newpath); err != nil {
		logger.Error("rename failed", "from", oldpath, "to", newpath, "error", err)
		return fmt.Errorf("renaming %s to %s: %w", oldpath, newpath, err)
	}
	idx.Move(from, to)
	return nil
}
