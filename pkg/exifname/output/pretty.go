package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
)

// PrettyFormatter formats output with colors and boxes using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	if r.Error != "" {
		w.WriteString(ErrorStyle.Bold(true).Render("Run aborted: " + r.Error))
		w.WriteString("\n")
	}
	return nil
}

// formatHeader builds the header box with the root and scan counts.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{
		LabelStyle.Render("Root:") + " " + ValueStyle.Render(r.Root),
		LabelStyle.Render("Processed:") + " " + ValueStyle.Render(fmt.Sprintf("%s images (%s) in %s directories, %s",
			humanize.Comma(r.Stats.Images),
			types.FormatSize(r.Stats.ImageBytes),
			humanize.Comma(r.Stats.Directories),
			formatDuration(r.Stats.Duration))),
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable lists renames with names relative to their directory.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Renames) == 0 {
		return MutedStyle.Render("  Nothing to rename") + "\n"
	}

	width := 0
	for _, rn := range r.Renames {
		if n := len(Relative(r.Root, rn.From)); n > width {
			width = n
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + TableHeaderStyle.Render(padRight("FROM", width)) + "    " + TableHeaderStyle.Render("TO") + "\n")
	for _, rn := range r.Renames {
		from := padRight(Relative(r.Root, rn.From), width)
		to := filepath.Base(rn.To)
		style := SuccessStyle
		if rn.Displacement {
			style = WarningStyle
		}
		sb.WriteString(fmt.Sprintf("  %s -> %s\n", PathStyle.Render(from), style.Render(to)))
	}
	return sb.String()
}

// formatFooter builds the footer box with summary counts.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		LabelStyle.Render("Renamed:") + " " + SuccessStyle.Render(humanize.Comma(int64(r.Stats.Renamed))),
		LabelStyle.Render("Displaced:") + " " + WarningStyle.Render(humanize.Comma(int64(r.Stats.Displaced))),
		LabelStyle.Render("Already named:") + " " + ValueStyle.Render(humanize.Comma(r.Stats.Skipped)),
		LabelStyle.Render("Ignored:") + " " + MutedStyle.Render(humanize.Comma(int64(r.Stats.Ignored))),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

// Relative returns path relative to root, or path itself when it is not
// below root.
func Relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
