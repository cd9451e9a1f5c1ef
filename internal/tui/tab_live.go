package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

func (a App) updateLiveKey(key string) (bool, App) {
	switch key {
	case "c":
		a.monitor.Checkpoint()
		return true, a
	case "C":
		a.monitor.Clear()
		a.notify(model.SeverityInfo, "Live log cleared")
		return true, a
	}
	return false, a
}

func (a App) renderLiveTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	state := a.monitor.State()
	stateValue, stateColor := "Running", t.Green
	if state == live.StatePaused {
		stateValue, stateColor = "Paused", t.Yellow
	}

	// The live card uses its own thresholds, lower than the dashboard's.
	pct := 0.0
	if a.snap != nil {
		pct = a.snap.PercentageUsed
	}
	status := a.policy.Live.Classify(pct)
	updated := "never"
	if !a.updatedAt.IsZero() {
		updated = a.updatedAt.Format("15:04:05")
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{
			Label: "Status",
			Value: status.Glyph() + " " + cli.FormatPercent(pct),
			Delta: string(status),
			Color: components.StatusColor(status),
		},
		{
			Label: "Monitor",
			Value: stateValue,
			Delta: fmt.Sprintf("every %s", a.cfg.TUI.RefreshEvery()),
			Color: stateColor,
		},
		{
			Label: "Last Update",
			Value: updated,
			Delta: fmt.Sprintf("%d entries", len(a.monitor.Entries())),
		},
	}, cw))
	b.WriteString("\n")

	// Room left for the log: cards (5) + log border and title (3) + hint (2).
	limit := h - 10
	if limit < 3 {
		limit = 3
	}
	innerW := components.CardInnerWidth(cw)
	body := components.LogList(a.monitor.Entries(), innerW, limit) + "\n\n" +
		muted.Render("[p] pause/resume  [r] refresh  [c] checkpoint  [C] clear")
	b.WriteString(components.ContentCard("Activity Log", body, cw))
	return b.String()
}
