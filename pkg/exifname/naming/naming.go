// Package naming builds the timestamp-derived file names used by exifname
// and classifies file extensions.
//
// Target names follow the Dropbox camera upload convention:
//
//	2023-03-05 14.07.22.jpg     base name
//	2023-03-05 14.07.22-2.jpg   collision variant 2
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Layout is the time layout of a target base name.
const Layout = "2006-01-02 15.04.05"

// Extension is the extension every renamed file receives.
const Extension = ".jpg"

// imageExts contains the accepted input extensions, lower-cased.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// IsImage reports whether name has an accepted image extension.
// The match is case-insensitive.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// Base returns the target base name (without extension) for a capture time.
func Base(t time.Time) string {
	return t.Format(Layout)
}

// TargetName returns the full target file name for a capture time.
func TargetName(t time.Time) string {
	return Base(t) + Extension
}

// Variant returns the file name for collision slot n of base.
// Slot 0 is the base name itself.
func Variant(base string, n int) string {
	if n <= 0 {
		return base + Extension
	}
	return base + "-" + strconv.Itoa(n) + Extension
}

// Slot returns the collision slot that name occupies for base: 0 for the
// base name itself, n for "base-n.jpg". ok is false when name is neither.
// Suffixes must be unpadded positive integers.
func Slot(name, base string) (n int, ok bool) {
	if name == base+Extension {
		return 0, true
	}

	rest, found := strings.CutPrefix(name, base+"-")
	if !found {
		return 0, false
	}
	digits, found := strings.CutSuffix(rest, Extension)
	if !found || digits == "" || digits[0] == '0' {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Conforms reports whether name is the target name for base or one of its
// collision variants.
func Conforms(name, base string) bool {
	_, ok := Slot(name, base)
	return ok
}

// LooksNamed reports whether name is already in target format for some
// timestamp. It does not read metadata, so it cannot tell whether the
// timestamp in the name is the right one.
func LooksNamed(name string) bool {
	if len(name) < len(Layout)+len(Extension) {
		return false
	}
	base := name[:len(Layout)]
	if _, err := time.Parse(Layout, base); err != nil {
		return false
	}
	return Conforms(name, base)
}
