package resolver

import "github.com/jamesainslie/exifname/pkg/exifname/naming"

// Index holds the names claimed in one directory. It replaces repeated
// existence queries against the filesystem: it is seeded from a directory
// listing and updated as each rename is decided.
type Index struct {
	dir    string
	claims map[string]struct{}

	// reserved names are held by entries that are not images (directories,
	// symlinks). They block their name but are never moved.
	reserved map[string]struct{}
}

// NewIndex returns an index for dir seeded with the given image names.
// Names of other entries are added with Reserve.
func NewIndex(dir string, names ...string) *Index {
	idx := &Index{
		dir:      dir,
		claims:   make(map[string]struct{}, len(names)),
		reserved: make(map[string]struct{}),
	}
	for _, name := range names {
		idx.Claim(name)
	}
	return idx
}

// Dir returns the directory the index describes.
func (idx *Index) Dir() string {
	return idx.dir
}

// Has reports whether name is claimed.
func (idx *Index) Has(name string) bool {
	_, ok := idx.claims[name]
	return ok
}

// Claim marks name as taken.
func (idx *Index) Claim(name string) {
	idx.claims[name] = struct{}{}
}

// Reserve marks name as taken by an entry that must stay where it is.
func (idx *Index) Reserve(name string) {
	idx.claims[name] = struct{}{}
	idx.reserved[name] = struct{}{}
}

// Reserved reports whether name is held by an entry that cannot be moved.
func (idx *Index) Reserved(name string) bool {
	_, ok := idx.reserved[name]
	return ok
}

// Release frees name.
func (idx *Index) Release(name string) {
	delete(idx.claims, name)
	delete(idx.reserved, name)
}

// Move transfers a claim from one name to another.
func (idx *Index) Move(from, to string) {
	idx.Release(from)
	idx.Claim(to)
}

// firstFree returns the lowest n >= from whose variant of base is unclaimed.
func (idx *Index) firstFree(base string, from int) int {
	n := from
	for idx.Has(naming.Variant(base, n)) {
		n++
	}
	return n
}

// nextSlot decides where a new file for base goes. It returns the collision
// slot for the file (0 meaning the plain name) and whether the current
// occupant of the plain name must first move to slot 1.
//
// A claimed slot 1 marks an existing collision chain and the file takes the
// lowest free slot from 2 upward. Otherwise a claimed plain name is the first
// collision: the occupant moves to 1 and the file takes the lowest free slot
// from 2, which is 2 unless a stray variant already sits there. A plain name
// held by a reserved entry is never displaced; the file takes the lowest free
// slot from 1 instead.
func nextSlot(idx *Index, base string) (slot int, displace bool) {
	plain := naming.Variant(base, 0)
	switch {
	case idx.Has(naming.Variant(base, 1)):
		return idx.firstFree(base, 2), false
	case idx.Reserved(plain):
		return idx.firstFree(base, 1), false
	case idx.Has(plain):
		return idx.firstFree(base, 2), true
	default:
		return 0, false
	}
}
