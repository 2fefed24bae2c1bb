package fsys

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns every FS implementation together with a root directory
// that exists on it.
func backends(t *testing.T) map[string]struct {
	fs   *AferoFS
	root string
} {
	t.Helper()

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/photos", 0o755))

	return map[string]struct {
		fs   *AferoFS
		root string
	}{
		"memory": {fs: New(mem), root: "/photos"},
		"os":     {fs: NewOS(), root: t.TempDir()},
	}
}

func writeFile(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte("data"), 0o644))
}

func TestReadDir(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			writeFile(t, b.fs.Afero(), filepath.Join(b.root, "b.jpg"))
			writeFile(t, b.fs.Afero(), filepath.Join(b.root, "a.txt"))
			require.NoError(t, b.fs.Afero().Mkdir(filepath.Join(b.root, "sub"), 0o755))

			entries, err := b.fs.ReadDir(b.root)
			require.NoError(t, err)
			require.Len(t, entries, 3)

			assert.Equal(t, "a.txt", entries[0].Name)
			assert.Equal(t, types.KindRegular, entries[0].Kind)
			assert.Equal(t, filepath.Join(b.root, "a.txt"), entries[0].Path)
			assert.Equal(t, int64(4), entries[0].Size)

			assert.Equal(t, "b.jpg", entries[1].Name)
			assert.Equal(t, types.KindRegular, entries[1].Kind)

			assert.Equal(t, "sub", entries[2].Name)
			assert.Equal(t, types.KindDirectory, entries[2].Kind)
		})
	}
}

func TestReadDirMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.fs.ReadDir(filepath.Join(b.root, "missing"))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrFileSystem)
		})
	}
}

func TestReadDirSymlinkIsOther(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.jpg")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.jpg")))

	entries, err := NewOS().ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "link.jpg", entries[0].Name)
	assert.Equal(t, types.KindOther, entries[0].Kind)
	assert.Equal(t, types.KindRegular, entries[1].Kind)
}

func TestExists(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(b.root, "here.jpg")
			writeFile(t, b.fs.Afero(), path)

			ok, err := b.fs.Exists(path)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = b.fs.Exists(filepath.Join(b.root, "gone.jpg"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestExistsDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	link := filepath.Join(root, "dangling.jpg")
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), link))

	ok, err := NewOS().Exists(link)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRename(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			from := filepath.Join(b.root, "IMG001.jpg")
			to := filepath.Join(b.root, "2023-03-05 14.07.22.jpg")
			writeFile(t, b.fs.Afero(), from)

			require.NoError(t, b.fs.Rename(from, to))

			ok, err := b.fs.Exists(from)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = b.fs.Exists(to)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestRenameNeverReplaces(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			from := filepath.Join(b.root, "a.jpg")
			to := filepath.Join(b.root, "b.jpg")
			require.NoError(t, afero.WriteFile(b.fs.Afero(), from, []byte("a"), 0o644))
			require.NoError(t, afero.WriteFile(b.fs.Afero(), to, []byte("b"), 0o644))

			err := b.fs.Rename(from, to)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRenameConflict)

			data, err := afero.ReadFile(b.fs.Afero(), to)
			require.NoError(t, err)
			assert.Equal(t, "b", string(data))
		})
	}
}

func TestRenameAcrossDirectoriesRejected(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/photos/a.jpg")
	require.NoError(t, mem.MkdirAll("/photos/sub", 0o755))

	err := New(mem).Rename("/photos/a.jpg", "/photos/sub/a.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFileSystem)
}

func TestRenameMissingSource(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := b.fs.Rename(filepath.Join(b.root, "nope.jpg"), filepath.Join(b.root, "x.jpg"))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrFileSystem)
		})
	}
}

// foldingFs lower-cases every file name it is given, like a case-insensitive
// disk does.
type foldingFs struct {
	afero.Fs
}

func fold(path string) string {
	return filepath.Join(filepath.Dir(path), strings.ToLower(filepath.Base(path)))
}

func (f foldingFs) Stat(name string) (os.FileInfo, error) {
	return f.Fs.Stat(fold(name))
}

func (f foldingFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	return f.Fs.(afero.Lstater).LstatIfPossible(fold(name))
}

func (f foldingFs) Rename(oldname, newname string) error {
	return f.Fs.Rename(fold(oldname), fold(newname))
}

func TestRenameCaseOnlyOnCaseInsensitiveDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "2023-03-05 14.07.22.jpg"), []byte("a"), 0o644))

	fs := New(foldingFs{Fs: afero.NewOsFs()})
	err := fs.Rename(filepath.Join(root, "2023-03-05 14.07.22.JPG"), filepath.Join(root, "2023-03-05 14.07.22.jpg"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "2023-03-05 14.07.22.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestRenameCaseOnlyDistinctFilesConflict(t *testing.T) {
	for name, fs := range map[string]*AferoFS{
		"os":       NewOS(),
		"fallback": New(afero.NewOsFs()),
	} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			from := filepath.Join(root, "a.JPG")
			to := filepath.Join(root, "a.jpg")
			require.NoError(t, os.WriteFile(from, []byte("upper"), 0o644))
			require.NoError(t, os.WriteFile(to, []byte("lower"), 0o644))
			if data, _ := os.ReadFile(from); string(data) != "upper" {
				t.Skip("temp dir is case-insensitive")
			}

			err := fs.Rename(from, to)
			assert.ErrorIs(t, err, types.ErrRenameConflict)

			data, err := os.ReadFile(to)
			require.NoError(t, err)
			assert.Equal(t, "lower", string(data))
		})
	}
}
