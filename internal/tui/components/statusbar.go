package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// Notice is one transient status bar message.
type Notice struct {
	At       time.Time
	Severity model.Severity
	Text     string
}

// StatusInfo is everything the status bar shows.
type StatusInfo struct {
	UpdatedAt  time.Time
	Refreshing bool
	Paused     bool
	Stale      bool
	Notice     *Notice // newest notification, nil for none
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := base.Render(" ") +
		keyStyle.Render("?") + base.Render(" help  ") +
		keyStyle.Render("r") + base.Render(" refresh  ") +
		keyStyle.Render("q") + base.Render(" quit")

	var right []string
	switch {
	case info.Refreshing:
		right = append(right, lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("↻ refreshing"))
	case info.Paused:
		right = append(right, lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Render("⏸ paused"))
	default:
		right = append(right, lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("● live"))
	}
	if info.Stale {
		right = append(right, lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render("stale"))
	}
	if !info.UpdatedAt.IsZero() {
		right = append(right, dimStyle.Render("updated "+info.UpdatedAt.Format("15:04:05")))
	}
	rightStr := strings.Join(right, base.Render("  ")) + base.Render(" ")

	middle := ""
	if info.Notice != nil {
		style := lipgloss.NewStyle().Foreground(SeverityColor(info.Notice.Severity)).Background(t.Surface)
		avail := width - lipgloss.Width(left) - lipgloss.Width(rightStr) - 4
		if avail > 8 {
			text := info.Notice.Text
			if lipgloss.Width(text) > avail {
				text = string([]rune(text)[:avail-1]) + "…"
			}
			middle = base.Render("  ") + style.Render(text)
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}
	bar := left + middle + base.Render(strings.Repeat(" ", padding)) + rightStr
	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}

// SeverityColor maps a log severity to its theme color.
func SeverityColor(s model.Severity) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.SeverityError:
		return t.Red
	case model.SeverityWarning:
		return t.Yellow
	case model.SeveritySuccess:
		return t.Green
	default:
		return t.TextMuted
	}
}

// StatusColor maps a usage status to its theme color.
func StatusColor(s model.Status) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.StatusCritical:
		return t.Red
	case model.StatusWarning:
		return t.Yellow
	default:
		return t.Green
	}
}
