package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Full-screen dashboard with live, analytics and settings tabs",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// The TUI owns the screen; only errors reach stderr.
	if flagLogLevel == "" {
		flagLogLevel = "error"
	}
	e, err := newEnv(logger.FormatConsole)
	if err != nil {
		return err
	}
	defer e.close()

	// Card backgrounds need color even when the terminal is not detected.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Source:    e.src,
		Config:    e.cfg,
		Logger:    e.log,
		NeedSetup: !config.Exists(),
	})
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.Start(ctx)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
