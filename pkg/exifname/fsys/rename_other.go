//go:build !linux

package fsys

// renameNoReplace is unavailable on this platform; callers fall back to
// check-then-rename.
func renameNoReplace(_, _ string) error {
	return errNoReplaceUnsupported
}
