package main

import (
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/spf13/cobra"
)

// initializeLogging is the PersistentPreRunE hook of the root command. It
// sets up the log file and, with --verbose, a debug console on stderr.
func initializeLogging(cmd *cobra.Command, args []string) error {
	if err := config.EnsureStateDir(); err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Path = config.DefaultLogPath()

	cfg, cfgErr := loadConfig()
	if cfgErr == nil {
		logCfg.Level = cfg.Logging.Level
		logCfg.Components = cfg.Logging.Components
		logCfg.Rotation = parseRotationConfig(cfg.Logging.Rotation)
		if cfg.Logging.Path != "" {
			logCfg.Path = cfg.Logging.Path
		}
	}
	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		return err
	}
	cobra.OnFinalize(func() { _ = logging.Close() })

	if cfgErr != nil {
		logging.Get("cli").Warn("using default logging, config failed to load", "error", cfgErr)
	}
	return nil
}

// parseRotationConfig converts the configured rotation settings. Sizes use
// go-humanize notation ("10MB", "10MiB", "1G"); an empty or invalid size
// falls back to the default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
	if rc.MaxSize != "" {
		if size, err := humanize.ParseBytes(rc.MaxSize); err == nil && size > 0 {
			out.MaxSize = int64(size)
		}
	}
	return out
}
