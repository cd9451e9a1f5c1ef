package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/daemon"
	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll the snapshot in the background and serve it over HTTP and SSE",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the daemon is up and what it last saw",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Send the daemon SIGTERM and wait for it to exit",
	RunE:  runDaemonStop,
}

func init() {
	f := daemonCmd.PersistentFlags()
	f.StringVar(&flagDaemonAddr, "addr", "", "Listen address (default from config)")
	f.DurationVar(&flagDaemonInterval, "interval", live.DefaultInterval, "How often to re-read the snapshot")
	f.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(store.Dir(), "ccmonitord.pid"), "PID file")
	f.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(store.Dir(), "ccmonitord.log"), "Log file when detached")
	f.IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Activity log entries kept in memory")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Fork into the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Set on the forked process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	files := pidFiles(flagDaemonPIDFile)
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("--detach and --child are mutually exclusive")
	case flagDaemonDetach:
		return forkDaemon(files)
	default:
		return serveDaemon(files)
	}
}

// forkDaemon re-executes this binary with --child in place of --detach,
// sending its output to the log file.
func forkDaemon(files pidFiles) error {
	if err := files.claim(); err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	args := lo.Reject(os.Args[1:], func(a string, _ int) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	//nolint:gosec // log path comes from the local user's flags
	out, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening daemon log: %w", err)
	}
	defer func() { _ = out.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // re-executes ourselves
	child.Stdout, child.Stderr = out, out
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	fmt.Print(cli.RenderKV("Daemon started", []cli.KV{
		{Label: "PID", Value: fmt.Sprintf("%d", child.Process.Pid)},
		{Label: "Status", Value: "http://" + daemonAddr(loadConfig()) + "/v1/status"},
		{Label: "PID file", Value: string(files)},
		{Label: "Log", Value: flagDaemonLogFile},
	}))
	return nil
}

func serveDaemon(files pidFiles) error {
	if err := files.claim(); err != nil {
		return err
	}

	e, err := newEnv(logger.FormatJSON)
	if err != nil {
		return err
	}
	defer e.close()
	addr := daemonAddr(e.cfg)

	if err := files.write(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		Source:    e.where(),
	}); err != nil {
		return err
	}
	defer files.clear()

	watch := ""
	if e.origin == "file" {
		watch = e.cfg.General.SnapshotPath
	}
	narrator := live.Narrator{Thresholds: e.cfg.Thresholds.Narration(), ResetSoon: live.DefaultResetSoon}
	svc := daemon.New(daemon.Config{
		Source:       e.src,
		WatchPath:    watch,
		Interval:     flagDaemonInterval,
		Addr:         addr,
		Token:        e.cfg.General.Token,
		EventsBuffer: flagDaemonEventsBuffer,
		Preferences:  e.prefs,
		Policy:       e.policy,
		Narrator:     &narrator,
		Logger:       e.log,
	})

	fmt.Printf("  Serving http://%s, polling %s every %s\n", addr, e.where(), flagDaemonInterval)
	fmt.Printf("  %s\n", cli.Muted("ccmonitor daemon stop --pid-file "+string(files)))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonAddr is the --addr flag, else the configured address.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	if cfg.General.DaemonAddr != "" {
		return cfg.General.DaemonAddr
	}
	return daemon.DefaultAddr
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	files := pidFiles(flagDaemonPIDFile)
	pid, err := files.pid()
	switch {
	case err != nil:
		fmt.Println("  Daemon is not running")
		return nil
	case !processAlive(pid):
		fmt.Printf("  Daemon is not running (stale pid %d in %s)\n", pid, files)
		return nil
	}

	cfg := loadConfig()
	addr := daemonAddr(cfg)
	if st, err := files.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	pairs := []cli.KV{
		{Label: "PID", Value: fmt.Sprintf("%d", pid)},
		{Label: "Address", Value: "http://" + addr},
	}

	st, err := fetchStatus(cmd.Context(), addr, cfg.General.Token)
	if err != nil {
		pairs = append(pairs, cli.KV{Label: "API", Value: cli.Warn(err.Error())})
		fmt.Print(cli.RenderKV("Daemon", pairs))
		return nil
	}

	updated := "pending"
	if !st.UpdatedAt.IsZero() {
		updated = cli.FormatAgo(st.UpdatedAt)
	}
	pairs = append(pairs,
		cli.KV{Label: "State", Value: fmt.Sprintf("%s, every %ds", st.State, st.PollIntervalSec)},
		cli.KV{Label: "Updated", Value: updated},
	)
	if st.Summary != nil {
		pairs = append(pairs,
			cli.KV{Label: "Tokens", Value: fmt.Sprintf("%s / %s  %s", cli.FormatNumber(st.Summary.TokensUsed),
				cli.FormatNumber(st.Summary.TokenLimit), cli.FormatPercent(st.Summary.PercentageUsed))},
			cli.KV{Label: "Status", Value: st.Summary.Status.Glyph() + " " + string(st.Summary.Status)},
			cli.KV{Label: "Cost today", Value: cli.FormatCurrency(st.Summary.TodayCostUSD)},
		)
	}
	pairs = append(pairs, cli.KV{Label: "Log", Value: fmt.Sprintf("%d entries, %d subscribers", st.LogCount, st.SubscriberCount)})
	if st.Stale {
		pairs = append(pairs, cli.KV{Label: "Data", Value: cli.Warn("stale")})
	}
	if st.LastError != "" {
		pairs = append(pairs, cli.KV{Label: "Last error", Value: cli.Warn(st.LastError)})
	}
	fmt.Print(cli.RenderKV("Daemon", pairs))
	return nil
}

// fetchStatus asks a running daemon for GET /v1/status.
func fetchStatus(ctx context.Context, addr, token string) (*daemon.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("malformed status: %w", err)
	}
	return &st, nil
}

func runDaemonStop(cmd *cobra.Command, _ []string) error {
	files := pidFiles(flagDaemonPIDFile)
	pid, err := files.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding pid %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signalling pid %d: %w", pid, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 8*time.Second)
	defer cancel()
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for processAlive(pid) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) still running after SIGTERM", pid)
		case <-tick.C:
		}
	}
	files.clear()
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
