package walker

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/fsys"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2023, 3, 5, 14, 7, 22, 0, time.UTC)
	t2 = time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
)

// fakeReader returns capture times by file content, so files keep their
// timestamp across renames.
type fakeReader struct {
	fs    afero.Fs
	times map[string]time.Time
	calls int
}

func (r *fakeReader) CaptureTime(path string) (time.Time, error) {
	r.calls++
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", types.ErrMetadataUnavailable, path, err)
	}
	t, ok := r.times[string(data)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", types.ErrMetadataUnavailable, path)
	}
	return t, nil
}

type tree struct {
	mem     afero.Fs
	reader  *fakeReader
	notices bytes.Buffer
}

// newTree creates files whose content is their original relative path.
func newTree(t *testing.T, files map[string]time.Time, others ...string) *tree {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/photos", 0o755))

	times := make(map[string]time.Time, len(files))
	for rel, ts := range files {
		path := filepath.Join("/photos", rel)
		require.NoError(t, mem.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(mem, path, []byte(rel), 0o644))
		times[rel] = ts
	}
	for _, rel := range others {
		path := filepath.Join("/photos", rel)
		require.NoError(t, mem.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(mem, path, []byte(rel), 0o644))
	}

	return &tree{mem: mem, reader: &fakeReader{fs: mem, times: times}}
}

func (tr *tree) walker(opts Options) *Walker {
	opts.FS = fsys.New(tr.mem)
	opts.Reader = tr.reader
	opts.Notices = &tr.notices
	return New(opts)
}

func (tr *tree) names(t *testing.T, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(tr.mem, dir)
	require.NoError(t, err)
	var names []string
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestRunRenamesSingleImage(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"IMG001.jpg": t1})

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-03-05 14.07.22.jpg"}, tr.names(t, "/photos"))
	assert.Equal(t, int64(1), report.Directories)
	assert.Equal(t, int64(1), report.Images)
	require.Len(t, report.Renames, 1)
	assert.Equal(t, types.RenamedDirect, report.Renames[0].Disposition)
	assert.Empty(t, tr.notices.String())
}

func TestRunReportsNonImages(t *testing.T) {
	tr := newTree(t,
		map[string]time.Time{"IMG001.jpg": t1, "IMG002.JPEG": t2},
		"notes.txt", "typo.jepg")

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	assert.Equal(t,
		"Ignoring non-image file: /photos/notes.txt\nIgnoring non-image file: /photos/typo.jepg\n",
		tr.notices.String())
	assert.Equal(t, []string{"/photos/notes.txt", "/photos/typo.jepg"}, report.Ignored)
	assert.Equal(t, []string{
		"2023-03-05 14.07.22.jpg",
		"2024-07-01 08.30.00.jpg",
		"notes.txt",
		"typo.jepg",
	}, tr.names(t, "/photos"))
}

func TestRunNumbersPerDirectory(t *testing.T) {
	tr := newTree(t, map[string]time.Time{
		"a.jpg":     t1,
		"b.jpg":     t1,
		"sub/c.jpg": t1,
		"sub/d.jpg": t1,
		"sub/e.jpg": t1,
	})

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-03-05 14.07.22-1.jpg", "2023-03-05 14.07.22-2.jpg"}, tr.names(t, "/photos"))
	assert.Equal(t, []string{
		"2023-03-05 14.07.22-1.jpg",
		"2023-03-05 14.07.22-2.jpg",
		"2023-03-05 14.07.22-3.jpg",
	}, tr.names(t, "/photos/sub"))
	assert.Equal(t, int64(2), report.Directories)
	assert.Equal(t, 5, report.RenamedFiles())
	assert.Equal(t, 2, report.Displaced())
}

func TestRunAbortsOnMissingMetadata(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"good.jpg": t1}, "bad.jpg")

	_, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMetadataUnavailable)

	// Nothing in the directory was renamed.
	assert.Equal(t, []string{"bad.jpg", "good.jpg"}, tr.names(t, "/photos"))
}

func TestRunKeepsEarlierDirectoriesOnAbort(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"a.jpg": t1}, "sub/bad.jpg")

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Len(t, report.Renames, 1)
	assert.Equal(t, []string{"2023-03-05 14.07.22.jpg"}, tr.names(t, "/photos"))
}

func TestRunStopsWhenCancelled(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"a.jpg": t1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.walker(Options{}).Run(ctx, "/photos")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a.jpg"}, tr.names(t, "/photos"))
	assert.Zero(t, tr.reader.calls)
}

func TestRunIsIdempotent(t *testing.T) {
	tr := newTree(t, map[string]time.Time{
		"a.jpg":     t1,
		"b.jpg":     t1,
		"c.jpg":     t2,
		"sub/d.jpg": t2,
	})

	_, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)
	before := tr.names(t, "/photos")

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)
	assert.Empty(t, report.Renames)
	assert.Equal(t, int64(4), report.Skipped)
	assert.Equal(t, before, tr.names(t, "/photos"))
}

func TestRunHooks(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"a.jpg": t1, "b.jpg": t1, "sub/c.jpg": t2})

	var moves [][2]string
	var dirs []string
	report, err := tr.walker(Options{
		OnRename:    func(from, to string) { moves = append(moves, [2]string{from, to}) },
		OnDirectory: func(dir string) { dirs = append(dirs, dir) },
	}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	assert.Equal(t, []string{"/photos", "/photos/sub"}, dirs)
	assert.Equal(t, [][2]string{
		{"/photos/a.jpg", "/photos/2023-03-05 14.07.22.jpg"},
		{"/photos/2023-03-05 14.07.22.jpg", "/photos/2023-03-05 14.07.22-1.jpg"},
		{"/photos/b.jpg", "/photos/2023-03-05 14.07.22-2.jpg"},
		{"/photos/sub/c.jpg", "/photos/sub/2024-07-01 08.30.00.jpg"},
	}, moves)
	require.Len(t, report.Renames, 4)
	assert.True(t, report.Renames[1].Displacement)
}

func TestRunNeverDisplacesDirectory(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"a.jpg": t1}, "2023-03-05 14.07.22.jpg/inner.txt")

	report, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	ok, err := afero.IsDir(tr.mem, "/photos/2023-03-05 14.07.22.jpg")
	require.NoError(t, err)
	assert.True(t, ok, "directory keeps its name")
	assert.Equal(t, []string{"2023-03-05 14.07.22-1.jpg"}, tr.names(t, "/photos"))

	require.Len(t, report.Renames, 1)
	assert.Equal(t, types.RenamedAppended, report.Renames[0].Disposition)
	assert.False(t, report.Renames[0].Displacement)
	assert.Equal(t, int64(2), report.Directories)
	assert.Equal(t, []string{"/photos/2023-03-05 14.07.22.jpg/inner.txt"}, report.Ignored)

	again, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)
	assert.Empty(t, again.Renames)
}

func TestRunSkipsDirectoryInVariantSlot(t *testing.T) {
	tr := newTree(t, map[string]time.Time{"a.jpg": t1, "b.jpg": t1})
	require.NoError(t, tr.mem.MkdirAll("/photos/2023-03-05 14.07.22-1.jpg", 0o755))

	_, err := tr.walker(Options{}).Run(context.Background(), "/photos")
	require.NoError(t, err)

	ok, err := afero.IsDir(tr.mem, "/photos/2023-03-05 14.07.22-1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"2023-03-05 14.07.22-2.jpg", "2023-03-05 14.07.22-3.jpg"}, tr.names(t, "/photos"))
}

func TestRunMissingRoot(t *testing.T) {
	tr := newTree(t, nil)

	_, err := tr.walker(Options{}).Run(context.Background(), "/nowhere")
	assert.ErrorIs(t, err, types.ErrFileSystem)
}

func TestValidateDefaults(t *testing.T) {
	opts := Options{FS: fsys.New(afero.NewMemMapFs())}
	require.NoError(t, opts.Validate())
	assert.NotNil(t, opts.Reader)
	assert.NotNil(t, opts.Notices)
}
