package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// LogList renders narration entries newest first, one per line, showing at
// most limit entries. Messages wider than width are truncated.
func LogList(entries []model.LogEntry, width, limit int) string {
	t := theme.Active
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No activity yet. Updates appear here as they arrive.")
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	timeStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		stamp := e.Timestamp.Format("15:04:05")
		msgW := width - len(stamp) - 5
		msg := e.Message
		if msgW > 1 && lipgloss.Width(msg) > msgW {
			msg = string([]rune(msg)[:msgW-1]) + "…"
		}
		msgStyle := lipgloss.NewStyle().Foreground(SeverityColor(e.Severity)).Background(t.Surface)
		lines = append(lines, timeStyle.Render(stamp)+space+e.Glyph+space+msgStyle.Render(msg))
	}
	return strings.Join(lines, "\n")
}
