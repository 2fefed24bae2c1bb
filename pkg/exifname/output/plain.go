package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple aligned table of renames
// followed by a one-line summary. No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("DISPOSITION\tFROM\tTO\n")); err != nil {
		return err
	}
	for _, rn := range r.Renames {
		disposition := rn.Disposition
		if rn.Displacement {
			disposition = "displaced"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", disposition, rn.From, rn.To); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "renamed=%d displaced=%d skipped=%d ignored=%d directories=%d\n",
		r.Stats.Renamed, r.Stats.Displaced, r.Stats.Skipped, r.Stats.Ignored, r.Stats.Directories)
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
