// Package cmd implements the ccmonitor CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

var (
	flagSnapshot string
	flagURL      string
	flagQuiet    bool
	flagLogLevel string
	flagNoCache  bool
)

var rootCmd = &cobra.Command{
	Use:   "ccmonitor",
	Short: "Claude usage monitor",
	Long:  "Watch your Claude usage: token budget, burn rate, projections, and daily trends.",
	RunE:  runDashboard,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagSnapshot, "snapshot", "s", "", "Snapshot file written by the collector (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Read the snapshot over HTTP instead of from a file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress warnings")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the last-known-good snapshot cache")
}

// runEnv is the resolved configuration and snapshot source shared by the
// commands.
type runEnv struct {
	cfg    config.Config
	prefs  config.Preferences
	policy report.Policy
	log    *zap.Logger
	src    source.Source
	origin string
	cache  *store.Cache
}

// loadConfig reads the config file and applies environment and flag
// overrides, in that order.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn("Config unreadable, using defaults: "+err.Error()))
	}
	config.ApplyEnv(&cfg)
	if flagSnapshot != "" {
		cfg.General.SnapshotPath = flagSnapshot
		cfg.General.SourceURL = ""
	}
	if flagURL != "" {
		cfg.General.SourceURL = flagURL
	}
	if flagLogLevel != "" {
		cfg.General.LogLevel = flagLogLevel
	}
	if flagNoCache {
		cfg.General.UseCache = false
	}
	return cfg
}

// newEnv resolves config, logger and source. format selects the logger
// encoder. Call close when done.
func newEnv(format string) (*runEnv, error) {
	cfg := loadConfig()

	log, err := logger.New(format, cfg.General.LogLevel)
	if err != nil {
		return nil, err
	}

	prefs, err := cfg.Prefs()
	if err != nil {
		log.Warn("invalid preferences, using defaults for those keys", zap.Error(err))
	}

	e := &runEnv{
		cfg:    cfg,
		prefs:  prefs,
		policy: report.PolicyFrom(cfg.Thresholds),
		log:    log,
	}

	var inner source.Source
	if cfg.General.SourceURL != "" {
		h, err := source.NewHTTP(cfg.General.SourceURL, cfg.General.Token)
		if err != nil {
			return nil, err
		}
		inner, e.origin = h, "http"
	} else {
		inner, e.origin = source.NewFile(cfg.General.SnapshotPath), "file"
	}
	e.src = inner

	if cfg.General.UseCache {
		cache, err := store.Open(store.DefaultPath())
		if err != nil {
			log.Warn("snapshot cache unavailable", zap.Error(err))
		} else {
			e.cache = cache
			e.src = source.NewCached(inner, cache, e.origin, log)
		}
	}
	return e, nil
}

func (e *runEnv) close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	_ = e.log.Sync()
}

// where names the snapshot origin for messages.
func (e *runEnv) where() string {
	if e.cfg.General.SourceURL != "" {
		return e.cfg.General.SourceURL
	}
	return e.cfg.General.SnapshotPath
}

// snapshot loads the current snapshot. A cached answer after a failed read
// is returned with a warning on stderr.
func (e *runEnv) snapshot(ctx context.Context) (*model.UsageSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s, err := e.src.Snapshot(ctx)
	if err == nil {
		return s, nil
	}
	if at, ok := source.IsStale(err); ok && s != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("%v; showing cached data from %s",
				errors.Unwrap(err), at.Local().Format("2006-01-02 15:04:05"))))
		}
		return s, nil
	}
	if errors.Is(err, source.ErrNoSnapshot) {
		return nil, fmt.Errorf("no usage snapshot at %s yet; is the collector running?", e.where())
	}
	return nil, fmt.Errorf("loading snapshot from %s: %w", e.where(), err)
}

// withSnapshot is the common shape of the one-shot report commands.
func withSnapshot(cmd *cobra.Command, run func(e *runEnv, s *model.UsageSnapshot) error) error {
	e, err := newEnv(logger.FormatConsole)
	if err != nil {
		return err
	}
	defer e.close()

	s, err := e.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	return run(e, s)
}
