package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Terminal-style usage readout",
	RunE:  runTerminal,
}

func init() {
	rootCmd.AddCommand(terminalCmd)
}

func runTerminal(cmd *cobra.Command, _ []string) error {
	return withSnapshot(cmd, func(e *runEnv, s *model.UsageSnapshot) error {
		term := report.BuildTerminal(s, e.prefs, e.policy)
		lines := term.Lines(time.Now(), terminalStyle(term))
		fmt.Println()
		fmt.Println(strings.Join(lines, "\n"))
		fmt.Println()
		return nil
	})
}

// terminalStyle colours the readout's tags with the CLI palette.
func terminalStyle(term report.Terminal) func(tag, text string) string {
	return func(tag, text string) string {
		var c lipgloss.Color
		switch tag {
		case "frame":
			c = cli.ColorAccent
		case "muted":
			c = cli.ColorTextMuted
		case "label":
			return lipgloss.NewStyle().Bold(true).Foreground(cli.ColorText).Render(text)
		case "bar":
			c = cli.StatusColor(term.Status)
		case "time":
			c = cli.ColorBlue
		case "trend":
			pct := 0.0
			if term.Velocity != nil {
				pct = term.Velocity.TrendPercent
			}
			c = cli.TrendColor(pct)
		default:
			return text
		}
		return cli.Colorize(c, text)
	}
}
