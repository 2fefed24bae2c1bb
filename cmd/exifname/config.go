package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage exifname configuration settings.

Configuration is loaded from:
  1. --config <file>
  2. $XDG_CONFIG_HOME/exifname/config.yaml (if set)
  3. ~/.config/exifname/config.yaml

Environment variables override config file settings using the EXIFNAME_ prefix:
  EXIFNAME_OUTPUT=pretty
  EXIFNAME_CACHE_ENABLED=false
  EXIFNAME_JOURNAL_RETENTION_DAYS=30`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.File != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.File)
	} else {
		fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
	}

	output := cfg.Output
	if output == "" {
		output = "(none)"
	}
	fmt.Fprintf(out, "output:                  %s\n", output)
	fmt.Fprintf(out, "cache.enabled:           %t\n", cfg.Cache.Enabled)
	fmt.Fprintf(out, "cache.path:              %s\n", cfg.Cache.Path)
	fmt.Fprintf(out, "journal.enabled:         %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(out, "journal.path:            %s\n", cfg.Journal.Path)
	fmt.Fprintf(out, "journal.retention_days:  %d\n", cfg.Journal.RetentionDays)
	fmt.Fprintf(out, "logging.level:           %s\n", cfg.Logging.Level)
	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	fmt.Fprintf(out, "logging.path:            %s\n", logPath)

	comps := make([]string, 0, len(cfg.Logging.Components))
	for c := range cfg.Logging.Components {
		comps = append(comps, c)
	}
	sort.Strings(comps)
	for _, c := range comps {
		fmt.Fprintf(out, "logging.components.%-6s %s\n", c+":", cfg.Logging.Components[c])
	}

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	envVars := []string{
		"EXIFNAME_OUTPUT",
		"EXIFNAME_CACHE_ENABLED",
		"EXIFNAME_CACHE_PATH",
		"EXIFNAME_JOURNAL_ENABLED",
		"EXIFNAME_JOURNAL_PATH",
		"EXIFNAME_JOURNAL_RETENTION_DAYS",
		"EXIFNAME_LOGGING_LEVEL",
	}
	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, created, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created default config file: %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cfgFile)
		return nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
