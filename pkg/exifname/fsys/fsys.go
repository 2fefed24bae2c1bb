// Package fsys provides the filesystem capabilities exifname needs
// (list, exists, rename) behind a small interface, so the rename policy can
// run against the local disk or an in-memory filesystem.
package fsys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/spf13/afero"
)

// FS is the capability set used by the walker and the resolver.
type FS interface {
	// ReadDir lists the immediate entries of dir sorted by name.
	// The "." and ".." entries are never returned.
	ReadDir(dir string) ([]types.FileEntry, error)

	// Exists reports whether anything occupies path. Symlinks are not
	// followed, so a dangling link still counts as occupying its name.
	Exists(path string) (bool, error)

	// Rename renames oldpath to newpath within the same directory.
	// It never replaces an existing newpath; it fails with
	// types.ErrRenameConflict instead.
	Rename(oldpath, newpath string) error
}

// errNoReplaceUnsupported is returned by renameNoReplace when the platform
// or the underlying filesystem cannot rename without replacing.
var errNoReplaceUnsupported = errors.New("no-replace rename unsupported")

// AferoFS implements FS on top of an afero.Fs.
type AferoFS struct {
	fs afero.Fs

	// noReplace performs an atomic rename that fails when the target exists.
	// Nil means check-then-rename.
	noReplace func(oldpath, newpath string) error
}

// New returns an FS backed by the given afero filesystem.
func New(fs afero.Fs) *AferoFS {
	return &AferoFS{fs: fs}
}

// NewOS returns an FS backed by the local disk. Where the kernel supports it
// renames use RENAME_NOREPLACE, so a target created by another process
// between the existence check and the rename is detected instead of lost.
func NewOS() *AferoFS {
	return &AferoFS{
		fs:        afero.NewOsFs(),
		noReplace: renameNoReplace,
	}
}

// Afero returns the underlying afero filesystem.
func (a *AferoFS) Afero() afero.Fs {
	return a.fs
}

// ReadDir lists the immediate entries of dir sorted by name.
func (a *AferoFS) ReadDir(dir string) ([]types.FileEntry, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %w", types.ErrFileSystem, dir, err)
	}

	entries := make([]types.FileEntry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, types.FileEntry{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Kind:    kindOf(info.Mode()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// kindOf classifies a file mode.
func kindOf(mode os.FileMode) types.EntryKind {
	switch {
	case mode.IsDir():
		return types.KindDirectory
	case mode.IsRegular():
		return types.KindRegular
	default:
		return types.KindOther
	}
}

// Exists reports whether anything occupies path.
func (a *AferoFS) Exists(path string) (bool, error) {
	_, err := a.lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: checking %s: %w", types.ErrFileSystem, path, err)
}

// lstat stats path without following a final symlink when the filesystem
// supports it.
func (a *AferoFS) lstat(path string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return a.fs.Stat(path)
}

// Rename renames oldpath to newpath without ever replacing newpath. On a
// case-insensitive filesystem newpath may name oldpath itself when the two
// differ only in case; that rename goes ahead.
func (a *AferoFS) Rename(oldpath, newpath string) error {
	if filepath.Dir(oldpath) != filepath.Dir(newpath) {
		return fmt.Errorf("%w: rename %s -> %s crosses directories", types.ErrFileSystem, oldpath, newpath)
	}

	if a.noReplace != nil {
		err := a.noReplace(oldpath, newpath)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, os.ErrExist):
			if !a.sameFile(oldpath, newpath) {
				return fmt.Errorf("%w: %s", types.ErrRenameConflict, newpath)
			}
			return a.rename(oldpath, newpath)
		case !errors.Is(err, errNoReplaceUnsupported):
			return fmt.Errorf("%w: rename %s -> %s: %w", types.ErrFileSystem, oldpath, newpath, err)
		}
	}

	exists, err := a.Exists(newpath)
	if err != nil {
		return err
	}
	if exists && !a.sameFile(oldpath, newpath) {
		return fmt.Errorf("%w: %s", types.ErrRenameConflict, newpath)
	}
	return a.rename(oldpath, newpath)
}

func (a *AferoFS) rename(oldpath, newpath string) error {
	if err := a.fs.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("%w: rename %s -> %s: %w", types.ErrFileSystem, oldpath, newpath, err)
	}
	return nil
}

// sameFile reports whether two names differing only in case resolve to the
// same file.
func (a *AferoFS) sameFile(oldpath, newpath string) bool {
	if !strings.EqualFold(filepath.Base(oldpath), filepath.Base(newpath)) {
		return false
	}
	oldInfo, err := a.lstat(oldpath)
	if err != nil {
		return false
	}
	newInfo, err := a.lstat(newpath)
	if err != nil {
		return false
	}
	return os.SameFile(oldInfo, newInfo)
}

// Ensure AferoFS implements FS.
var _ FS = (*AferoFS)(nil)
