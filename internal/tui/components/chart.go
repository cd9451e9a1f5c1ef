package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// eighths indexes partial block glyphs by fill, 0 through 8.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is cli.RenderSparkline on the card surface.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).
		Render(cli.RenderSparkline(values))
}

// BarChart draws values as vertical bars height rows tall, followed by an
// axis row and a label row. Bars are scaled with chart.Bars, so a cell row is
// eight units of bar height. Series wider than the plot are averaged into
// buckets. yFormat labels the peak and midpoint; nil uses cli.FormatCompact.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int, yFormat func(float64) string) string {
	if len(values) == 0 {
		return ""
	}
	if yFormat == nil {
		yFormat = cli.FormatCompact
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := chart.MaxValue(values)
	yTop, yMid := yFormat(peak), yFormat(peak/2)
	gutter := max(lipgloss.Width(yTop), lipgloss.Width(yMid), 1) + 1
	plotW := max(width-gutter-1, 5)

	values, labels = bucketSeries(values, labels, (plotW+1)/2)
	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := min(6, max(1, (plotW-(n-1)*gap)/n))
	axisW := n*barW + (n-1)*gap

	rects := chart.Bars(values, chart.Frame{Width: float64(n), Height: float64(height * 8)})
	fill := make([]int, n)
	for i, r := range rects {
		fill[i] = int(math.Round(r.Height))
	}

	surface := lipgloss.NewStyle().Background(t.Surface)
	axis := surface.Foreground(t.TextDim)
	bar := surface.Foreground(color)
	peakBar := surface.Foreground(t.AccentBright)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		tick := ""
		switch row {
		case height:
			tick = yTop
		case (height + 1) / 2:
			tick = yMid
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", gutter, tick)))

		floor := (row - 1) * 8
		for i, f := range fill {
			if i > 0 {
				b.WriteString(surface.Render(strings.Repeat(" ", gap)))
			}
			level := min(8, max(0, f-floor))
			style := bar
			if f >= height*8 {
				style = peakBar
			}
			b.WriteString(style.Render(strings.Repeat(string(eighths[level]), barW)))
		}
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", gutter, "0", strings.Repeat("─", axisW))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", gutter+1)))
		b.WriteString(axis.Render(strings.TrimRight(axisLabels(labels, barW+gap, axisW), " ")))
	}
	return b.String()
}

// bucketSeries averages values into at most limit buckets. Each bucket keeps
// the label of its first member.
func bucketSeries(values []float64, labels []string, limit int) ([]float64, []string) {
	n := len(values)
	if limit < 1 || n <= limit {
		return values, labels
	}
	keepLabels := len(labels) == n
	out := make([]float64, limit)
	var outLabels []string
	if keepLabels {
		outLabels = make([]string, limit)
	}
	for i := range out {
		lo, hi := i*n/limit, (i+1)*n/limit
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
		if keepLabels {
			outLabels[i] = labels[lo]
		}
	}
	return out, outLabels
}

// axisLabels lays the first, middle and last labels under their bars,
// dropping any that would collide with one already placed.
func axisLabels(labels []string, stride, width int) string {
	line := []rune(strings.Repeat(" ", width))
	n := len(labels)
	taken := -1
	for _, i := range []int{0, n / 2, n - 1} {
		lbl := []rune(labels[i])
		pos := i * stride
		if pos+len(lbl) > width {
			pos = width - len(lbl)
		}
		if pos < 0 || pos <= taken {
			continue
		}
		copy(line[pos:], lbl)
		taken = pos + len(lbl)
	}
	return string(line)
}

// ShareBar renders one labeled horizontal bar for a 0-100 share.
func ShareBar(label string, pct float64, color lipgloss.Color, labelW, barW int) string {
	t := theme.Active
	filled := int(pct / 100 * float64(barW))
	if filled < 0 {
		filled = 0
	}
	if filled > barW {
		filled = barW
	}
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if lipgloss.Width(label) > labelW {
		label = string([]rune(label)[:max(1, labelW-1)]) + "…"
	}
	return labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)) +
		barStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barW-filled)) +
		pctStyle.Render(fmt.Sprintf(" %5.1f%%", pct))
}
