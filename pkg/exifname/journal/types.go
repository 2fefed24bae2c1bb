// Package journal records every rename run as a JSON file so past runs can
// be inspected with `exifname history`. It is a record only; entries are
// never replayed.
package journal

import (
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// Status is the outcome of a recorded run.
type Status string

// Run statuses.
const (
	StatusComplete Status = "complete"
	StatusAborted  Status = "aborted"
)

// Entry is one recorded run.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Root      string         `json:"root"`
	Status    Status         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Renames   []types.Rename `json:"renames"`
	Summary   Summary        `json:"summary"`
}

// Summary contains the counts of a run.
type Summary struct {
	Directories int64         `json:"directories"`
	Images      int64         `json:"images"`
	Renamed     int           `json:"renamed"`
	Displaced   int           `json:"displaced"`
	Skipped     int64         `json:"skipped"`
	Ignored     int           `json:"ignored"`
	Elapsed     time.Duration `json:"elapsed"`
}
