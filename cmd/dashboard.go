package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

func runDashboard(cmd *cobra.Command, _ []string) error {
	return withSnapshot(cmd, func(e *runEnv, s *model.UsageSnapshot) error {
		d := report.BuildDashboard(s, e.prefs, e.policy, time.Now())

		fmt.Println()
		fmt.Println(cli.RenderTitle("CLAUDE USAGE  " + d.Plan.Plan))
		fmt.Println()

		status := cli.Colorize(cli.StatusColor(d.Status), d.Status.Glyph()+" "+string(d.Status))
		fmt.Print(cli.RenderKV("Usage", []cli.KV{
			{Label: "Tokens", Value: fmt.Sprintf("%s / %s  %s", cli.FormatNumber(d.TokensUsed), cli.FormatNumber(d.TokenLimit), cli.FormatPercent(d.PercentageUsed))},
			{Label: "Remaining", Value: cli.FormatNumber(d.TokensRemaining)},
			{Label: "Status", Value: status},
			{Label: "Burn rate", Value: fmt.Sprintf("%s/hr %s %s", cli.FormatCompact(d.BurnRate), d.BurnTier.Glyph(), d.BurnTier)},
			{Label: "Lasts", Value: d.TimeRemaining},
			{Label: "Depletes", Value: d.Depletion},
			{Label: "Reset in", Value: d.ResetIn},
		}))
		fmt.Println()

		fmt.Print(cli.RenderKV("Progress", []cli.KV{
			{Label: "Tokens", Value: cli.Colorize(cli.StatusColor(d.Status), cli.TokenBar(d.PercentageUsed)) + " " + cli.FormatPercent(d.PercentageUsed)},
			{Label: "Time", Value: cli.Colorize(cli.ColorBlue, cli.TimeBar(d.TimeProgress)) + " " + cli.FormatPercent(d.TimeProgress)},
			{Label: "Gauge", Value: fmt.Sprintf("%.0f° of %.1f (offset %.1f)", d.TokenGauge.Length, d.TokenGauge.Circumference, d.TokenGauge.DashOffset)},
		}))
		fmt.Println()

		fmt.Print(cli.RenderKV("Today", []cli.KV{
			{Label: "Tokens", Value: cli.FormatNumber(d.Today.Tokens)},
			{Label: "Cost", Value: cli.FormatCurrency(d.Today.Cost)},
			{Label: "Models", Value: fmt.Sprintf("%d", d.Today.ModelCount)},
		}))
		fmt.Println()

		fmt.Print(cli.RenderKV("This week", []cli.KV{
			{Label: "Tokens", Value: cli.FormatNumber(d.Week.TotalTokens)},
			{Label: "Cost", Value: cli.FormatCurrency(d.Week.TotalCost)},
			{Label: "Daily avg", Value: cli.FormatCompact(d.Week.AvgDailyTokens) + " · " + cli.FormatCurrency(d.Week.AvgDailyCost)},
		}))

		if extra := trendPairs(d); len(extra) > 0 {
			fmt.Println()
			fmt.Print(cli.RenderKV("Trend", extra))
		}

		if len(d.Models) > 0 {
			fmt.Println()
			rows := make([][]string, 0, len(d.Models))
			for _, m := range d.Models {
				rows = append(rows, []string{
					m.DisplayName,
					cli.FormatTokens(m.Tokens),
					cli.FormatCurrencyPrecise(m.Cost),
					fmt.Sprintf("%.1f%%", m.Percentage),
				})
			}
			fmt.Print(cli.RenderTable(cli.Table{
				Title:   "Models today",
				Headers: []string{"Model", "Tokens", "Cost", "Share"},
				Rows:    rows,
			}))
		}
		fmt.Println()
		return nil
	})
}

func trendPairs(d report.Dashboard) []cli.KV {
	var pairs []cli.KV
	if d.Velocity != nil {
		change := cli.Colorize(cli.TrendColor(d.Velocity.TrendPercent), cli.FormatSignedPercent(d.Velocity.TrendPercent))
		pairs = append(pairs, cli.KV{Label: "Velocity", Value: d.Velocity.Trend.Glyph() + " " + string(d.Velocity.Trend) + " " + change})
	}
	if d.Confidence != nil {
		pairs = append(pairs, cli.KV{Label: "Confidence", Value: cli.FormatPercent(*d.Confidence)})
	}
	if d.Session != nil {
		pairs = append(pairs, cli.KV{Label: "Session", Value: fmt.Sprintf("%d in window, %s tokens",
			d.Session.SessionsInWindow, cli.FormatTokens(d.Session.ActiveWindow.TotalTokens))})
	}
	return pairs
}
