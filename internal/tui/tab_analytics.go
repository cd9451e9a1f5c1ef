package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

const analyticsChartHeight = 10

func (a App) updateAnalyticsKey(key string) (bool, App) {
	switch key {
	case "w":
		if a.query.Window == pipeline.Window7d {
			a.query.Window = pipeline.Window30d
		} else {
			a.query.Window = pipeline.Window7d
		}
		return true, a
	case "m":
		if a.query.Metric == pipeline.MetricTokens {
			a.query.Metric = pipeline.MetricCost
		} else {
			a.query.Metric = pipeline.MetricTokens
		}
		return true, a
	}
	return false, a
}

func (a App) renderAnalyticsTab(cw int) string {
	t := theme.Active
	if a.snap == nil {
		return a.renderNoData(cw)
	}
	an := report.BuildAnalytics(a.snap, a.query, time.Now())

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	innerW := components.CardInnerWidth(cw)

	// Series chart
	values := make([]float64, len(an.Points))
	for i, p := range an.Points {
		values[i] = p.Value
	}
	color, yFormat := t.Accent, cli.FormatCompact
	if an.Metric == pipeline.MetricCost {
		color, yFormat = t.Green, cli.FormatCurrency
	}

	var chartBody strings.Builder
	chartBody.WriteString(accent.Render(an.WindowLabel) + muted.Render(" · ") + accent.Render(string(an.Metric)))
	chartBody.WriteString(muted.Render("   [w] range  [m] metric"))
	chartBody.WriteString("\n\n")
	if len(values) == 0 {
		chartBody.WriteString(muted.Render("No daily usage in this range"))
	} else {
		chartBody.WriteString(components.BarChart(values, an.Labels(), color, innerW, analyticsChartHeight, yFormat))
	}
	title := fmt.Sprintf("Daily %s", strings.ToUpper(string(an.Metric[:1]))+string(an.Metric[1:]))
	b := components.ContentCard(title, chartBody.String(), cw)

	// Weekly summary and breakdown
	var week strings.Builder
	week.WriteString(muted.Render("Total tokens  ") + value.Render(cli.FormatNumber(an.Week.TotalTokens)) + "\n")
	week.WriteString(muted.Render("Total cost    ") + value.Render(cli.FormatCurrency(an.Week.TotalCost)) + "\n")
	week.WriteString(muted.Render("Avg / day     ") + value.Render(cli.FormatCompact(an.Week.AvgDailyTokens)) +
		muted.Render(" · ") + value.Render(cli.FormatCurrency(an.Week.AvgDailyCost)) + "\n")
	week.WriteString(muted.Render("Depletion     ") + value.Render(an.Depletion))

	widths := components.LayoutRow(cw, 2)
	var donut strings.Builder
	if len(an.Breakdown) == 0 {
		donut.WriteString(muted.Render("No model usage today"))
	}
	bw := components.CardInnerWidth(widths[1])
	for i, m := range an.Breakdown {
		if i > 0 {
			donut.WriteString("\n")
		}
		arc := an.Donut[i]
		donut.WriteString(components.ShareBar(m.DisplayName, m.Percentage, lipgloss.Color(m.Color), 14, max(4, bw-37)))
		donut.WriteString(muted.Render(fmt.Sprintf("  %3.0f°→%3.0f°", arc.Rotation, arc.Rotation+arc.Length)))
	}

	return b + "\n" + components.CardRow([]string{
		components.ContentCard("This Week", week.String(), widths[0]),
		components.ContentCard("Model Breakdown", donut.String(), widths[1]),
	})
}
