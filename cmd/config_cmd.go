package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one configuration value",
	Long:  "Set one configuration value. Keys: " + strings.Join(config.SettableKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.ApplyEnv(&cfg)

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.SourceURL != "" {
		fmt.Printf("    Source URL:     %s\n", cfg.General.SourceURL)
	} else {
		fmt.Printf("    Snapshot path:  %s\n", cfg.General.SnapshotPath)
	}
	if cfg.General.Token != "" {
		fmt.Printf("    Token:          %s\n", maskToken(cfg.General.Token))
	}
	fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	fmt.Printf("    Use cache:      %v\n", cfg.General.UseCache)
	fmt.Printf("    Daemon address: %s\n", cfg.General.DaemonAddr)
	fmt.Println()

	prefs, perr := cfg.Prefs()
	fmt.Println("  [Preferences]")
	tz := prefs.Timezone
	if tz == "" {
		tz = "system (" + prefs.Location().String() + ")"
	}
	fmt.Printf("    Plan:            %s\n", config.PlanDisplay(prefs, nil).Plan)
	if prefs.Plan == config.PlanCustom {
		fmt.Printf("    Custom limit:    %d\n", prefs.CustomTokenLimit)
	}
	fmt.Printf("    Timezone:        %s\n", tz)
	fmt.Printf("    Reset hour:      %d\n", prefs.ResetHour)
	fmt.Printf("    Menu bar:        %s (cost from %s)\n", prefs.MenuBarDisplayMode, prefs.MenuBarCostSource)
	if perr != nil {
		fmt.Printf("    Invalid values:  %v\n", perr)
	}
	fmt.Println()

	t := cfg.Thresholds
	fmt.Println("  [Thresholds]")
	fmt.Printf("    Dashboard:  warning %.0f%%, critical %.0f%%\n", t.DashboardWarning, t.DashboardCritical)
	fmt.Printf("    Live:       warning %.0f%%, critical %.0f%%\n", t.LiveWarning, t.LiveCritical)
	fmt.Printf("    Narration:  warning %.0f%%, critical %.0f%%\n", t.NarrationWarning, t.NarrationCritical)
	fmt.Printf("    Burn rate:  moderate %.0f/hr, high %.0f/hr\n", t.BurnModerate, t.BurnHigh)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v every %s\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshEvery())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `ccmonitor setup` to reconfigure.")
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	if !flagQuiet {
		fmt.Printf("  %s = %s\n", args[0], args[1])
	}
	return nil
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
