package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// ringGlyphs shows an arc in quarter turns.
var ringGlyphs = []string{"○", "◔", "◑", "◕", "●"}

// fillBar renders a solid bubbles progress bar at pct percent.
func fillBar(pct float64, color lipgloss.Color, width int) string {
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.TextDim)
	return bar.ViewAs(unit(pct / 100))
}

// UsageBar is one dashboard gauge row: label, bar, percentage and a dim
// detail, colored by status.
func UsageBar(label string, pct float64, status model.Status, detail string, labelW, barWidth int) string {
	t := theme.Active
	color := StatusColor(status)
	on := lipgloss.NewStyle().Background(t.Surface)

	return on.Foreground(t.TextMuted).Render(fmt.Sprintf("%-*s ", labelW, label)) +
		fillBar(pct, color, barWidth) +
		on.Foreground(color).Bold(true).Render(fmt.Sprintf(" %5.1f%%", pct)) +
		on.Foreground(t.TextDim).Render("  "+detail)
}

// CompactUsageBar fits label, bar and percentage into width cells for the
// header.
func CompactUsageBar(label string, pct float64, status model.Status, width int) string {
	t := theme.Active
	color := StatusColor(status)
	on := lipgloss.NewStyle().Background(t.Surface)

	return on.Foreground(t.TextMuted).Render(label+" ") +
		fillBar(pct, color, max(4, width-lipgloss.Width(label)-6)) +
		on.Foreground(color).Bold(true).Render(fmt.Sprintf(" %3.0f%%", pct))
}

// RingGauge prints an arc as a quarter-turn circle glyph, then its share and
// sweep.
func RingGauge(label string, a chart.Arc, color lipgloss.Color) string {
	t := theme.Active
	quarter := min(len(ringGlyphs)-1, max(0, int(a.Length/90)))
	on := lipgloss.NewStyle().Background(t.Surface)
	return on.Foreground(color).Bold(true).Render(ringGlyphs[quarter]) +
		on.Foreground(t.TextMuted).Render(fmt.Sprintf(" %s %.0f%% (%.0f°)", label, a.Percentage, a.Length))
}

// unit clamps v to [0, 1]; NaN becomes 0.
func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
