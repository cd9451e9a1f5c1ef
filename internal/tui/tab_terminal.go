package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

func (a App) renderTerminalTab(cw int) string {
	term := report.BuildTerminal(a.snap, a.prefs, a.policy)
	lines := term.Lines(time.Now(), terminalStyle(term))
	return components.ContentCard("", strings.Join(lines, "\n"), cw)
}

// terminalStyle maps the readout's colour tags onto the active theme.
func terminalStyle(term report.Terminal) func(tag, text string) string {
	t := theme.Active
	base := lipgloss.NewStyle().Background(t.Surface)
	return func(tag, text string) string {
		switch tag {
		case "frame":
			return base.Foreground(t.Accent).Render(text)
		case "muted":
			return base.Foreground(t.TextDim).Render(text)
		case "label":
			return base.Foreground(t.AccentBright).Bold(true).Render(text)
		case "bar":
			return base.Foreground(components.StatusColor(term.Status)).Render(text)
		case "time":
			return base.Foreground(t.Blue).Render(text)
		case "trend":
			pct := 0.0
			if term.Velocity != nil {
				pct = term.Velocity.TrendPercent
			}
			return base.Foreground(cli.TrendColor(pct)).Render(text)
		default:
			return base.Foreground(t.TextPrimary).Render(text)
		}
	}
}
