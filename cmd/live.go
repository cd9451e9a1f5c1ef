package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/source"
)

var (
	flagLiveInterval time.Duration
	flagLiveWatch    bool
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Follow usage and print narration as it happens",
	RunE:  runLive,
}

func init() {
	liveCmd.Flags().DurationVar(&flagLiveInterval, "interval", live.DefaultInterval, "Refresh interval")
	liveCmd.Flags().BoolVar(&flagLiveWatch, "watch", true, "Also react to snapshot file changes (file source only)")
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(logger.FormatConsole)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	narrator := live.Narrator{Thresholds: e.cfg.Thresholds.Narration(), ResetSoon: live.DefaultResetSoon}
	mon := live.NewMonitor(e.src, live.Config{
		Interval: flagLiveInterval,
		Narrator: &narrator,
		Logger:   e.log,
	})
	entries, unsub := mon.Subscribe()
	defer unsub()

	if !flagQuiet {
		fmt.Printf("  Following %s every %s. Ctrl+C to stop.\n\n", e.where(), flagLiveInterval)
	}

	go func() {
		// The first refresh narrates the initial state.
		if err := mon.ForceRefresh(ctx); err != nil {
			e.log.Debug("initial refresh failed", zap.Error(err))
		}
		mon.Start(ctx)
	}()
	defer mon.Stop()

	if flagLiveWatch && e.origin == "file" {
		w := source.NewWatcher(e.cfg.General.SnapshotPath, 0, mon.Push, e.log)
		if err := w.Start(); err != nil {
			e.log.Warn("snapshot watcher unavailable", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case entry, ok := <-entries:
			if !ok {
				return nil
			}
			printEntry(entry)
		}
	}
}

func printEntry(entry model.LogEntry) {
	stamp := cli.Muted(entry.Timestamp.Local().Format("15:04:05"))
	msg := cli.Colorize(cli.SeverityColor(entry.Severity), entry.Message)
	fmt.Printf("  %s %s %s\n", stamp, entry.Glyph, msg)
}

