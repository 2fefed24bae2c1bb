package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/exifname/pkg/exifname/cache"
	"github.com/jamesainslie/exifname/pkg/exifname/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the capture-time cache",
	Long: `Commands for managing the capture-time cache.

The cache remembers the capture time of every photo read, keyed by path and
checked against the file's size and modification time, so repeat runs over
the same tree skip the EXIF decoding.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [dir]",
	Short: "Clear cached capture times",
	Long:  `Removes all cached capture times, or only those below dir.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [dir]",
	Short: "Show the number of cached entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cachePath returns the configured cache path, or the default when the
// config cannot be loaded.
func cachePath() string {
	cfg, err := loadConfig()
	if err != nil || cfg.Cache.Path == "" {
		return config.DefaultCachePath()
	}
	return cfg.Cache.Path
}

// openExistingCache opens the cache, reporting ok=false when none exists yet.
func openExistingCache() (c *cache.Cache, ok bool, err error) {
	path := cachePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, false, nil
	}
	c, err = cache.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open cache: %w", err)
	}
	return c, true, nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, ok, err := openExistingCache()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is already empty.")
		return nil
	}
	defer c.Close()

	if len(args) == 1 {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := c.Clear(dir); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared for %s.\n", dir)
		return nil
	}

	if err := c.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, ok, err := openExistingCache()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache location: %s\n", cachePath())
	if !ok {
		fmt.Fprintln(out, "Cache entries:  0 (no cache yet)")
		return nil
	}
	defer c.Close()

	dir := ""
	if len(args) == 1 {
		if dir, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}
	n, err := c.Count(dir)
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}
	fmt.Fprintf(out, "Cache entries:  %d\n", n)
	return nil
}
