package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/exifname/pkg/exifname/census"
	"github.com/jamesainslie/exifname/pkg/exifname/output"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Count what a run would touch, without renaming",
	Long: `Walks a tree and counts directories, images and other files.

Images whose name is not yet in target format are reported as pending.
Capture times are not read, so a file named for the wrong time still counts
as named.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVarP(&statsJSON, "json", "j", false, "output JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	r, err := census.Count(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if statsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	printCensus(cmd.OutOrStdout(), r)
	return nil
}

// printCensus writes a census as aligned label/value lines.
func printCensus(w io.Writer, r *census.Result) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", output.LabelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	line("Root:", r.Root)
	line("Directories:", humanize.Comma(r.Directories))
	line("Images:", fmt.Sprintf("%s (%s)", humanize.Comma(r.Images), humanize.IBytes(uint64(r.ImageBytes))))
	line("Named:", humanize.Comma(r.Named))
	line("Pending:", output.SuccessStyle.Render(humanize.Comma(r.Pending())))
	line("Ignored:", humanize.Comma(r.Ignored))
	if r.Errors > 0 {
		line("Errors:", output.ErrorStyle.Render(humanize.Comma(r.Errors)))
	}
}
