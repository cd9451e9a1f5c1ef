package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	if a.snap == nil {
		return a.renderNoData(cw)
	}
	d := report.BuildDashboard(a.snap, a.prefs, a.policy, time.Now())

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder

	// Row 1: headline metrics
	b.WriteString(components.MetricCardRow([]components.Metric{
		{
			Label: "Tokens Used",
			Value: cli.FormatNumber(d.TokensUsed),
			Delta: "of " + cli.FormatNumber(d.TokenLimit),
			Color: components.StatusColor(d.Status),
		},
		{
			Label: "Remaining",
			Value: cli.FormatNumber(d.TokensRemaining),
			Delta: "lasts " + d.TimeRemaining,
		},
		{
			Label: "Burn Rate",
			Value: cli.FormatCompact(d.BurnRate) + "/hr " + d.BurnTier.Glyph(),
			Delta: string(d.BurnTier),
			Color: burnColor(d.BurnTier),
		},
		{
			Label: "Reset In",
			Value: d.ResetIn,
			Delta: "depletes " + d.Depletion,
		},
	}, cw))
	b.WriteString("\n")

	// Row 2: gauges
	innerW := components.CardInnerWidth(cw)
	barW := innerW - 40
	if barW < 10 {
		barW = 10
	}
	var gauges strings.Builder
	gauges.WriteString(components.UsageBar("Tokens", d.PercentageUsed, d.Status,
		d.Status.Glyph()+" "+string(d.Status), 8, barW))
	gauges.WriteString("\n")
	gauges.WriteString(components.UsageBar("Time", d.TimeProgress, model.StatusSafe,
		"reset in "+d.ResetIn, 8, barW))
	gauges.WriteString("\n\n")
	gauges.WriteString(components.RingGauge("token share", d.TokenGauge, components.StatusColor(d.Status)))
	gauges.WriteString(muted.Render("    "))
	gauges.WriteString(components.RingGauge("cycle", d.TimeGauge, t.Blue))
	b.WriteString(components.ContentCard("Usage · "+d.Plan.Plan, gauges.String(), cw))
	b.WriteString("\n")

	// Row 3: today, week, models
	var today strings.Builder
	today.WriteString(muted.Render("Tokens  ") + value.Render(cli.FormatNumber(d.Today.Tokens)) + "\n")
	today.WriteString(muted.Render("Cost    ") + value.Render(cli.FormatCurrency(d.Today.Cost)) + "\n")
	today.WriteString(muted.Render("Models  ") + value.Render(fmt.Sprintf("%d", d.Today.ModelCount)))

	var week strings.Builder
	week.WriteString(muted.Render("Tokens     ") + value.Render(cli.FormatNumber(d.Week.TotalTokens)) + "\n")
	week.WriteString(muted.Render("Cost       ") + value.Render(cli.FormatCurrency(d.Week.TotalCost)) + "\n")
	week.WriteString(muted.Render("Daily avg  ") + value.Render(cli.FormatCompact(d.Week.AvgDailyTokens)+" · "+cli.FormatCurrency(d.Week.AvgDailyCost)))

	if a.isCompactLayout() {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Today", today.String(), halves[0]),
			components.ContentCard("This Week", week.String(), halves[1]),
		}))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Models Today", a.renderModelBars(d.Models, innerW), cw))
	} else {
		widths := components.LayoutRow(cw, 3)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Today", today.String(), widths[0]),
			components.ContentCard("This Week", week.String(), widths[1]),
			components.ContentCard("Models Today", a.renderModelBars(d.Models, components.CardInnerWidth(widths[2])), widths[2]),
		}))
	}

	if extra := renderTrendLine(d); extra != "" {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Trend", extra, cw))
	}
	return b.String()
}

func (a App) renderModelBars(shares []pipeline.ModelShare, innerW int) string {
	t := theme.Active
	if len(shares) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No model usage today")
	}
	labelW := 14
	barW := innerW - labelW - 9
	if barW < 4 {
		barW = 4
	}
	lines := make([]string, 0, len(shares))
	for _, s := range shares {
		lines = append(lines, components.ShareBar(s.DisplayName, s.Percentage, lipgloss.Color(s.Color), labelW, barW))
	}
	return strings.Join(lines, "\n")
}

// renderTrendLine shows velocity, prediction confidence and the session
// window when the snapshot carries them.
func renderTrendLine(d report.Dashboard) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var parts []string
	if d.Velocity != nil {
		change := lipgloss.NewStyle().Foreground(cli.TrendColor(d.Velocity.TrendPercent)).Background(t.Surface).
			Render(cli.FormatSignedPercent(d.Velocity.TrendPercent))
		parts = append(parts, muted.Render("velocity ")+value.Render(d.Velocity.Trend.Glyph()+" "+string(d.Velocity.Trend)+" ")+change)
	}
	if d.Confidence != nil {
		parts = append(parts, muted.Render("confidence ")+value.Render(cli.FormatPercent(*d.Confidence)))
	}
	if d.Session != nil {
		parts = append(parts, muted.Render("sessions ")+value.Render(fmt.Sprintf("%d", d.Session.SessionsInWindow))+
			muted.Render(" window ")+value.Render(cli.FormatTokens(d.Session.ActiveWindow.TotalTokens)))
	}
	return strings.Join(parts, muted.Render("   │   "))
}

// renderNoData explains why nothing is shown yet.
func (a App) renderNoData(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var b strings.Builder
	b.WriteString(muted.Render("No usage snapshot is available yet."))
	if a.lastErr != nil {
		b.WriteString("\n\n")
		b.WriteString(warn.Render(truncStr(a.lastErr.Error(), components.CardInnerWidth(cw))))
	}
	b.WriteString("\n\n")
	b.WriteString(muted.Render("Press r to retry once the collector has written a snapshot."))
	return components.ContentCard("No Data", b.String(), cw)
}

func burnColor(b model.BurnTier) lipgloss.Color {
	t := theme.Active
	switch b {
	case model.BurnHigh:
		return t.Red
	case model.BurnModerate:
		return t.Yellow
	default:
		return t.Green
	}
}
