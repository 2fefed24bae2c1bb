package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/exifname/pkg/exifname/cache"
	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/jamesainslie/exifname/pkg/exifname/fsys"
	"github.com/jamesainslie/exifname/pkg/exifname/journal"
	"github.com/jamesainslie/exifname/pkg/exifname/logging"
	"github.com/jamesainslie/exifname/pkg/exifname/metadata"
	"github.com/jamesainslie/exifname/pkg/exifname/output"
	"github.com/jamesainslie/exifname/pkg/exifname/types"
	"github.com/jamesainslie/exifname/pkg/exifname/walker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// renameOptions configures one rename run.
type renameOptions struct {
	Root    string
	Config  *config.Config
	NoCache bool
	Notices io.Writer
}

// runRename is the RunE of the root command.
func runRename(cmd *cobra.Command, args []string) error {
	logger := logging.Get("cli")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := cfg.Output
	if viper.IsSet("output") && viper.GetString("output") != "" {
		format = viper.GetString("output")
	}
	var formatter output.Formatter
	if format != "" {
		if formatter, err = output.Get(format); err != nil {
			return fmt.Errorf("%w (available: %v)", err, output.Available())
		}
	}

	notices := cmd.OutOrStdout()
	if getQuiet() {
		notices = io.Discard
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := rename(ctx, renameOptions{
		Root:    args[0],
		Config:  cfg,
		NoCache: viper.GetBool("no_cache"),
		Notices: notices,
	})
	if report == nil {
		return runErr
	}

	if cfg.Journal.Enabled && !viper.GetBool("no_journal") {
		recordRun(cfg, report, runErr)
	}

	if formatter != nil {
		var buf bytes.Buffer
		if err := formatter.Format(&buf, output.FromReport(report, runErr)); err != nil {
			logger.Error("failed to format report", "format", format, "error", err)
		} else {
			_, _ = cmd.OutOrStdout().Write(buf.Bytes())
		}
	}

	return runErr
}

// rename walks opts.Root and renames its images. The report is nil only when
// the run could not start.
func rename(ctx context.Context, opts renameOptions) (*types.RunReport, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrFileSystem, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrFileSystem, root)
	}

	fs := fsys.NewOS()
	var reader metadata.Reader = metadata.NewExifReader(fs.Afero())
	var onRename func(from, to string)

	if opts.Config.Cache.Enabled && !opts.NoCache {
		c, err := cache.Open(opts.Config.Cache.Path)
		if err != nil {
			logging.Get("cli").Warn("capture-time cache unavailable", "path", opts.Config.Cache.Path, "error", err)
		} else {
			defer c.Close()
			cr := metadata.NewCachingReader(reader, c, fs.Afero())
			reader = cr
			onRename = cr.Moved
			defer func() {
				hits, misses := cr.Stats()
				logging.Get("cli").Debug("cache usage", "hits", hits, "misses", misses)
			}()
		}
	}

	w := walker.New(walker.Options{
		FS:       fs,
		Reader:   reader,
		Notices:  opts.Notices,
		OnRename: onRename,
		OnDirectory: func(dir string) {
			logging.Get("cli").Debug("entering directory", "dir", dir)
		},
	})
	return w.Run(ctx, root)
}

// recordRun writes the run to the journal and prunes expired entries.
// Journal failures never fail the run.
func recordRun(cfg *config.Config, report *types.RunReport, runErr error) {
	logger := logging.Get("cli")
	if len(report.Renames) == 0 && runErr == nil {
		return
	}

	j, err := journal.New(cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		return
	}
	if _, err := j.Log(report, runErr); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	if _, err := j.Cleanup(cfg.Journal.RetentionDays); err != nil {
		logger.Warn("journal cleanup failed", "error", err)
	}
}
