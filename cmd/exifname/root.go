package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "exifname <dir>",
		Short: "Rename photos after their capture time",
		Long: `exifname renames every JPEG below a directory after the time it was
taken, using the Dropbox camera upload convention:

  2023-03-05 14.07.22.jpg

Photos sharing a capture time in the same directory are numbered
(2023-03-05 14.07.22-1.jpg, -2, ...). Files that already carry their name
are left alone, so running exifname twice changes nothing the second time.

Examples:
  exifname ~/Pictures/2023        # Rename a tree
  exifname -o pretty ~/Pictures   # Rename and print a report
  exifname stats ~/Pictures       # Count what a run would touch
  exifname history                # List past runs`,
		Args:              cobra.ExactArgs(1),
		RunE:              runRename,
		PersistentPreRunE: initializeLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/exifname/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-image notices")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging on stderr")
	rootCmd.Flags().StringP("output", "o", "", "report format after a run: pretty, plain, json, yaml")
	rootCmd.Flags().Bool("no-cache", false, "read every capture time from the file")
	rootCmd.Flags().Bool("no-journal", false, "do not record the run in the journal")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("no_journal", rootCmd.Flags().Lookup("no-journal"))
}

// initConfig wires environment overrides for the flags bound above.
func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration from --config or the default locations.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
