// Package types provides core data types for the exifname photo renamer.
// It includes directory entry classification, rename dispositions and the
// aggregated report of a rename run, along with size formatting helpers.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// EntryKind classifies a directory entry.
type EntryKind int

// Entry kinds produced by directory enumeration.
const (
	KindOther EntryKind = iota
	KindRegular
	KindDirectory
)

// String returns the string representation of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDirectory:
		return "dir"
	default:
		return "other"
	}
}

// FileEntry is a single entry of a directory listing.
type FileEntry struct {
	// Path is the full path of the entry (directory joined with name).
	Path string `json:"path"`

	// Name is the base name of the entry.
	Name string `json:"name"`

	// Kind tags the entry as a regular file, a directory or anything else
	// (symlinks, devices, sockets).
	Kind EntryKind `json:"kind"`

	// Size is the file size in bytes (0 for directories).
	Size int64 `json:"size"`

	// ModTime is the last modification time of the entry.
	ModTime time.Time `json:"mod_time"`
}

// Disposition is the terminal state of a single file after resolution.
type Disposition int

// Dispositions of the per-file state machine. Every state except
// Unresolved is terminal.
const (
	Unresolved Disposition = iota
	Skipped
	RenamedDirect
	RenamedWithDisplacement
	RenamedAppended
)

// String returns the string representation of the disposition.
func (d Disposition) String() string {
	switch d {
	case Skipped:
		return "skipped"
	case RenamedDirect:
		return "renamed"
	case RenamedWithDisplacement:
		return "renamed-displacing"
	case RenamedAppended:
		return "renamed-appended"
	default:
		return "unresolved"
	}
}

// Renamed reports whether the disposition moved the file.
func (d Disposition) Renamed() bool {
	return d == RenamedDirect || d == RenamedWithDisplacement || d == RenamedAppended
}

// Rename records one rename performed on disk.
type Rename struct {
	// From is the path before the rename.
	From string `json:"from"`

	// To is the path after the rename.
	To string `json:"to"`

	// Captured is the capture timestamp that produced the name.
	Captured time.Time `json:"captured"`

	// Disposition is how the file was resolved. Displaced occupants are
	// recorded with the disposition of the file that displaced them.
	Disposition Disposition `json:"disposition"`

	// Displacement is true when this rename moved a previous occupant aside.
	Displacement bool `json:"displacement,omitempty"`
}

// RunReport contains the aggregated results of a rename run.
type RunReport struct {
	// Root is the absolute directory the run started from.
	Root string `json:"root"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total time taken by the run.
	Elapsed time.Duration `json:"elapsed"`

	// Directories is the number of directories processed.
	Directories int64 `json:"directories"`

	// Images is the number of eligible image files examined.
	Images int64 `json:"images"`

	// ImageBytes is the total size of the eligible image files.
	ImageBytes int64 `json:"image_bytes"`

	// Skipped is the number of images already carrying their target name.
	Skipped int64 `json:"skipped"`

	// Ignored lists the non-image entries that were reported and left alone.
	Ignored []string `json:"ignored,omitempty"`

	// Renames lists every rename in the order it was performed.
	Renames []Rename `json:"renames,omitempty"`
}

// RenamedFiles returns the number of images that received a new name,
// not counting displaced occupants.
func (r *RunReport) RenamedFiles() int {
	n := 0
	for _, rn := range r.Renames {
		if !rn.Displacement {
			n++
		}
	}
	return n
}

// Displaced returns the number of occupants moved aside to a -1 slot.
func (r *RunReport) Displaced() int {
	return len(r.Renames) - r.RenamedFiles()
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
