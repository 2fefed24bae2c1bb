package output

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// document is the structure shared by the json and yaml formatters.
type document struct {
	Renames []RenameInfo  `json:"renames" yaml:"renames"`
	Ignored []string      `json:"ignored" yaml:"ignored"`
	Stats   documentStats `json:"stats" yaml:"stats"`
	Meta    documentMeta  `json:"meta" yaml:"meta"`
}

type documentStats struct {
	RunStats `json:",inline" yaml:",inline"`
	Duration string `json:"duration" yaml:"duration"`
}

type documentMeta struct {
	Root     string `json:"root" yaml:"root"`
	Complete bool   `json:"complete" yaml:"complete"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func buildDocument(r *Result) document {
	doc := document{
		Renames: r.Renames,
		Ignored: r.Ignored,
		Stats: documentStats{
			RunStats: r.Stats,
			Duration: r.Stats.Duration.String(),
		},
		Meta: documentMeta{
			Root:     r.Root,
			Complete: r.Error == "",
			Error:    r.Error,
		},
	}
	if doc.Renames == nil {
		doc.Renames = []RenameInfo{}
	}
	if doc.Ignored == nil {
		doc.Ignored = []string{}
	}
	return doc
}

// JSONFormatter formats output as a single indented JSON object with
// renames, ignored, stats and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// YAMLFormatter formats output as YAML with the same structure as
// JSONFormatter.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(buildDocument(r)); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
