// Package config provides configuration management for exifname.
package config

// Default configuration values for exifname.
const (
	// DefaultOutput is the report format printed after a run. Empty prints
	// nothing but the non-image notices.
	DefaultOutput = ""

	// DefaultRetentionDays is the default number of days to keep journal
	// entries.
	DefaultRetentionDays = 90

	// DefaultLogMaxSize is the default size at which the log file rotates.
	DefaultLogMaxSize = "10MB"

	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "EXIFNAME"
)

// DefaultComponentLevels are the per-component log levels written by
// `exifname config init`.
var DefaultComponentLevels = map[string]string{
	"walker":   "info",
	"resolver": "info",
	"metadata": "warn",
	"cache":    "warn",
	"journal":  "info",
}
