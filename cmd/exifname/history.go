package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/jamesainslie/exifname/pkg/exifname/journal"
	"github.com/jamesainslie/exifname/pkg/exifname/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past rename runs",
	Long: `View the journal of past rename runs.

Every run that renamed at least one file, or stopped on an error, is
recorded with the full list of renames.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the renames of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove journal entries older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getJournal returns the journal at the configured path, or the default
// path when the config cannot be loaded.
func getJournal() (*journal.Journal, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		j, jerr := journal.New(config.DefaultJournalDir())
		return j, nil, jerr
	}
	j, err := journal.New(cfg.Journal.Path)
	return j, cfg, err
}

func runHistory(cmd *cobra.Command, args []string) error {
	j, _, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	printHistory(cmd.OutOrStdout(), entries)
	return nil
}

// printHistory writes the entry table.
func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-34s  %-19s  %-8s  %8s  %9s  %s\n", "ID", "WHEN", "STATUS", "RENAMED", "DISPLACED", "ROOT")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		status := string(e.Status)
		if e.Status == journal.StatusAborted {
			status = output.ErrorStyle.Render(status)
		}
		fmt.Fprintf(w, "%-34s  %-19s  %-8s  %8d  %9d  %s\n",
			truncateString(e.ID, 34),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			e.Summary.Renamed,
			e.Summary.Displaced,
			e.Root)
	}
	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintln(w, "Use 'exifname history show <id>' for the renames of a run.")
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, _, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	entry, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	printEntry(cmd.OutOrStdout(), entry)
	return nil
}

// printEntry writes the details of one run.
func printEntry(w io.Writer, e *journal.Entry) {
	label := output.LabelStyle.Render
	fmt.Fprintf(w, "%s %s\n", label("ID:       "), e.ID)
	fmt.Fprintf(w, "%s %s\n", label("When:     "), e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "%s %s\n", label("Root:     "), e.Root)
	fmt.Fprintf(w, "%s %s\n", label("Status:   "), e.Status)
	if e.Error != "" {
		fmt.Fprintf(w, "%s %s\n", label("Error:    "), output.ErrorStyle.Render(e.Error))
	}
	fmt.Fprintf(w, "%s %d renamed, %d displaced, %d already named, %d ignored in %d directories\n",
		label("Summary:  "),
		e.Summary.Renamed, e.Summary.Displaced, e.Summary.Skipped, e.Summary.Ignored, e.Summary.Directories)

	if len(e.Renames) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, rn := range e.Renames {
		marker := "  "
		if rn.Displacement {
			marker = output.WarningStyle.Render("* ")
		}
		fmt.Fprintf(w, "%s%s -> %s\n", marker, output.Relative(e.Root, rn.From), filepath.Base(rn.To))
	}
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	j, cfg, err := getJournal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	retentionDays := config.DefaultRetentionDays
	if cfg != nil && cfg.Journal.RetentionDays > 0 {
		retentionDays = cfg.Journal.RetentionDays
	}

	removed, err := j.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %d days.\n", removed, retentionDays)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
