package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// logger is the package-level logger for the journal.
var logger = logging.Get("journal")

// ErrNotFound is returned by Get when no entry has the given ID.
var ErrNotFound = errors.New("journal entry not found")

// Journal stores run entries as JSON files in a directory.
type Journal struct {
	dir string
	mu  sync.Mutex
}

// New creates a Journal in dir. The directory is created on first write.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory cannot be empty")
	}
	return &Journal{dir: dir}, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// Log records a run. runErr is the error that stopped the run, if any.
func (j *Journal) Log(report *types.RunReport, runErr error) (*Entry, error) {
	if report == nil {
		return nil, errors.New("nil run report")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now().UTC()
	entry := &Entry{
		ID:        generateID(now),
		Timestamp: now,
		Root:      report.Root,
		Status:    StatusComplete,
		Renames:   report.Renames,
		Summary: Summary{
			Directories: report.Directories,
			Images:      report.Images,
			Renamed:     report.RenamedFiles(),
			Displaced:   report.Displaced(),
			Skipped:     report.Skipped,
			Ignored:     len(report.Ignored),
			Elapsed:     report.Elapsed,
		},
	}
	if entry.Renames == nil {
		entry.Renames = []types.Rename{}
	}
	if runErr != nil {
		entry.Status = StatusAborted
		entry.Error = runErr.Error()
	}

	if err := j.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}

	logger.Info("run recorded", "id", entry.ID, "renames", len(entry.Renames), "status", entry.Status)
	return entry, nil
}

// writeEntry writes entry atomically through a temp file.
func (j *Journal) writeEntry(entry *Entry) error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	path := j.entryPath(entry.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (j *Journal) entryPath(id string) string {
	return filepath.Join(j.dir, id+".json")
}

// List returns entries newest first. A limit of 0 or less returns all.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := readEntry(filepath.Join(j.dir, f.Name()))
		if err != nil {
			logger.Warn("skipping unreadable journal entry", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entry, err := readEntry(j.entryPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. A retention of 0 or less removes nothing.
func (j *Journal) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read journal directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, f.Name())); err != nil {
			logger.Warn("failed to remove journal entry", "file", f.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("journal cleaned", "removed", removed, "retention_days", retentionDays)
	}
	return removed, nil
}

// generateID creates an ID like "run-2024-06-15T10-30-00-1b4e28ba".
func generateID(now time.Time) string {
	return fmt.Sprintf("run-%s-%s", now.Format("2006-01-02T15-04-05"), uuid.NewString()[:8])
}
