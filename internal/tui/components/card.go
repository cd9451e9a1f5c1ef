// Package components provides reusable TUI widgets for the ccmonitor dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// LayoutRow splits total into n widths summing to total. Leading widths
// take the remainder.
func LayoutRow(total, n int) []int {
	if n <= 0 {
		return nil
	}
	return lo.Times(n, func(i int) int {
		if i < total%n {
			return total/n + 1
		}
		return total / n
	})
}

// CardInnerWidth is the text width inside a card of outer width w.
func CardInnerWidth(w int) int { return max(10, w-4) }

// frame is the rounded card border for outer width w.
func frame(w int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(10, w-2)).
		Padding(0, 1)
}

// Metric is one metric card. An empty Color means TextPrimary.
type Metric struct {
	Label string
	Value string
	Delta string
	Color lipgloss.Color
}

// MetricCard renders m at outer width w: label, bold value, optional delta.
func MetricCard(m Metric, w int) string {
	t := theme.Active
	on := lipgloss.NewStyle().Background(t.Surface)
	lines := []string{
		on.Foreground(t.TextMuted).Render(m.Label),
		on.Foreground(lo.Ternary(m.Color == "", t.TextPrimary, m.Color)).Bold(true).Render(m.Value),
	}
	if m.Delta != "" {
		lines = append(lines, on.Foreground(t.TextDim).Render(m.Delta))
	}
	return frame(w).Render(strings.Join(lines, "\n"))
}

// MetricCardRow lays cards across exactly total columns.
func MetricCardRow(cards []Metric, total int) string {
	widths := LayoutRow(total, len(cards))
	return CardRow(lo.Map(cards, func(m Metric, i int) string {
		return MetricCard(m, widths[i])
	}))
}

// ContentCard renders body in a card of outer width w, under a bold title
// when one is given.
func ContentCard(title, body string, w int) string {
	t := theme.Active
	if title != "" {
		head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
		body = head.Render(title) + "\n" + body
	}
	return frame(w).Render(body)
}

// CardRow joins cards left to right. Shorter cards get background-filled
// lines underneath so the row has no unstyled gaps.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	tallest := lo.Max(lo.Map(cards, func(c string, _ int) int { return lipgloss.Height(c) }))
	fill := lipgloss.NewStyle().Background(theme.Active.Background)

	padded := lo.Map(cards, func(c string, _ int) string {
		missing := tallest - lipgloss.Height(c)
		if missing == 0 {
			return c
		}
		blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
		return c + strings.Repeat("\n"+blank, missing)
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, padded...)
}
