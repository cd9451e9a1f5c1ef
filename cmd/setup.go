package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose plan, reset hour, timezone and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  %s\n", cli.Warn("Existing config ignored: "+err.Error()))
	}

	form, apply := tui.NewSetupForm(cfg)
	if err = form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\n  Setup cancelled; nothing saved.")
			return nil
		}
		return err
	}

	if err := apply(&cfg); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV("Saved "+config.ConfigPath(), []cli.KV{
		{Label: "Plan", Value: cfg.Preferences.Plan},
		{Label: "Reset hour", Value: fmt.Sprintf("%02d:00", cfg.Preferences.ResetHour)},
		{Label: "Timezone", Value: lo.Ternary(cfg.Preferences.Timezone == "", "local", cfg.Preferences.Timezone)},
		{Label: "Theme", Value: cfg.Appearance.Theme},
	}))
	fmt.Println()
	return nil
}
