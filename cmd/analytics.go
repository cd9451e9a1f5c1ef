package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

var (
	flagRange    string
	flagMetric   string
	flagChart    string
	flagWidth    int
	flagSVG      string
	flagDonutSVG string
	flagFormat   string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Usage trends, weekly summary, and model breakdown",
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().StringVar(&flagRange, "range", "7d", "Time range: 7d or 30d")
	analyticsCmd.Flags().StringVar(&flagMetric, "metric", "tokens", "Metric: tokens or cost")
	analyticsCmd.Flags().StringVar(&flagChart, "chart", "area", "Chart kind: area, line, or bar")
	analyticsCmd.Flags().IntVar(&flagWidth, "width", report.DefaultChartWidth, "SVG chart width in pixels")
	analyticsCmd.Flags().StringVar(&flagSVG, "svg", "", "Write the chart as SVG to this file")
	analyticsCmd.Flags().StringVar(&flagDonutSVG, "donut-svg", "", "Write the model breakdown donut as SVG to this file")
	analyticsCmd.Flags().StringVar(&flagFormat, "format", "table", "Output format: table, json, or yaml")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	q, err := report.ParseQuery(flagRange, flagMetric, flagChart, strconv.Itoa(flagWidth))
	if err != nil {
		return err
	}
	switch flagFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q: want table, json, or yaml", flagFormat)
	}

	return withSnapshot(cmd, func(_ *runEnv, s *model.UsageSnapshot) error {
		an := report.BuildAnalytics(s, q, time.Now())

		if flagSVG != "" {
			if err := writeFile(flagSVG, func(w io.Writer) error { return chart.RenderSVG(w, an.Chart, an.SVGOptions()) }); err != nil {
				return err
			}
		}
		if flagDonutSVG != "" {
			center := cli.FormatTokens(s.Today.TotalTokens)
			if err := writeFile(flagDonutSVG, func(w io.Writer) error {
				return chart.RenderDonutSVG(w, an.DonutSlices(), center)
			}); err != nil {
				return err
			}
		}

		switch flagFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(an)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer func() { _ = enc.Close() }()
			return enc.Encode(an)
		}
		printAnalytics(an)
		return nil
	})
}


func printAnalytics(an report.Analytics) {
	format := cli.FormatCompact
	if an.Metric == pipeline.MetricCost {
		format = cli.FormatCurrency
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ANALYTICS  %s · %s", an.WindowLabel, an.Metric)))
	fmt.Println()

	if len(an.Points) == 0 {
		fmt.Println("  No daily usage in this range.")
	} else {
		values := make([]float64, len(an.Points))
		for i, p := range an.Points {
			values[i] = p.Value
		}
		fmt.Printf("  %s  %s\n\n", cli.Muted("trend"), cli.Colorize(cli.ColorAccent, cli.RenderSparkline(values)))

		peak := chart.MaxValue(values)
		labels := an.Labels()
		for i, p := range an.Points {
			label := fmt.Sprintf("%-8s %8s", labels[i], format(p.Value))
			fmt.Println(cli.RenderHorizontalBar(label, p.Value, peak, 40, cli.ColorAccent))
		}
	}
	fmt.Println()

	fmt.Print(cli.RenderKV("This week", []cli.KV{
		{Label: "Tokens", Value: cli.FormatNumber(an.Week.TotalTokens)},
		{Label: "Cost", Value: cli.FormatCurrency(an.Week.TotalCost)},
		{Label: "Avg / day", Value: cli.FormatCompact(an.Week.AvgDailyTokens) + " · " + cli.FormatCurrency(an.Week.AvgDailyCost)},
		{Label: "Depletion", Value: an.Depletion},
	}))

	if len(an.Breakdown) > 0 {
		fmt.Println()
		fmt.Print(renderBreakdown(an.Breakdown, an.Donut))
	}
	fmt.Println()
}

// renderBreakdown tabulates model shares with their donut arcs.
func renderBreakdown(shares []pipeline.ModelShare, arcs []chart.Arc) string {
	rows := make([][]string, 0, len(shares))
	for i, m := range shares {
		row := []string{
			cli.Colorize(lipgloss.Color(m.Color), "●") + " " + m.DisplayName,
			cli.FormatTokens(m.Tokens),
			cli.FormatCurrencyPrecise(m.Cost),
			fmt.Sprintf("%.1f%%", m.Percentage),
		}
		if i < len(arcs) {
			row = append(row,
				fmt.Sprintf("%.1f°", arcs[i].Rotation),
				fmt.Sprintf("%.1f°", arcs[i].Length),
			)
		}
		rows = append(rows, row)
	}
	return cli.RenderTable(cli.Table{
		Title:   "Model breakdown",
		Headers: []string{"Model", "Tokens", "Cost", "Share", "Start", "Sweep"},
		Rows:    rows,
	})
}

// writeFile creates path and streams render into it.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // output path chosen by the user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", path)
	}
	return nil
}
