// Package output provides formatters for the report of a rename run
// (pretty, plain, json, yaml).
//
// Formatters are registered by name and selected at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromReport(report, runErr)); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// RenameInfo describes one rename for output formatting.
type RenameInfo struct {
	// From is the path before the rename.
	From string `json:"from" yaml:"from"`

	// To is the path after the rename.
	To string `json:"to" yaml:"to"`

	// Dir is the directory both paths live in.
	Dir string `json:"dir" yaml:"dir"`

	// Captured is the capture time the new name encodes.
	Captured time.Time `json:"captured" yaml:"captured"`

	// Disposition is how the file was resolved.
	Disposition string `json:"disposition" yaml:"disposition"`

	// Displacement marks the move of a previous occupant to its -1 slot.
	Displacement bool `json:"displacement,omitempty" yaml:"displacement,omitempty"`
}

// RunStats contains the counts of a run.
type RunStats struct {
	Directories int64         `json:"directories" yaml:"directories"`
	Images      int64         `json:"images" yaml:"images"`
	ImageBytes  int64         `json:"image_bytes" yaml:"image_bytes"`
	Renamed     int           `json:"renamed" yaml:"renamed"`
	Displaced   int           `json:"displaced" yaml:"displaced"`
	Skipped     int64         `json:"skipped" yaml:"skipped"`
	Ignored     int           `json:"ignored" yaml:"ignored"`
	Duration    time.Duration `json:"-" yaml:"-"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Root is the directory the run started from.
	Root string

	// Renames lists every rename in the order it happened.
	Renames []RenameInfo

	// Ignored lists the entries that were not images.
	Ignored []string

	// Stats contains the run counts.
	Stats RunStats

	// Error is the error that stopped the run, empty on success.
	Error string
}

// FromReport converts a run report into a Result. runErr is the error that
// stopped the run, if any.
func FromReport(report *types.RunReport, runErr error) *Result {
	r := &Result{
		Root:    report.Root,
		Ignored: report.Ignored,
		Stats: RunStats{
			Directories: report.Directories,
			Images:      report.Images,
			ImageBytes:  report.ImageBytes,
			Renamed:     report.RenamedFiles(),
			Displaced:   report.Displaced(),
			Skipped:     report.Skipped,
			Ignored:     len(report.Ignored),
			Duration:    report.Elapsed,
		},
		Renames: make([]RenameInfo, len(report.Renames)),
	}
	for i, rn := range report.Renames {
		r.Renames[i] = RenameInfo{
			From:         rn.From,
			To:           rn.To,
			Dir:          filepath.Dir(rn.To),
			Captured:     rn.Captured,
			Disposition:  rn.Disposition.String(),
			Displacement: rn.Displacement,
		}
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any
// existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
