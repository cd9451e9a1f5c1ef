package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

var flagDailyRange string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&flagDailyRange, "range", "7d", "Time range: 7d or 30d")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	q, err := report.ParseQuery(flagDailyRange, "", "", "")
	if err != nil {
		return err
	}

	return withSnapshot(cmd, func(_ *runEnv, s *model.UsageSnapshot) error {
		an := report.BuildAnalytics(s, q, time.Now())
		if len(an.Series) == 0 {
			fmt.Println("\n  No data for the selected period.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("DAILY USAGE  " + an.WindowLabel))
		fmt.Println()

		tokens := make([]float64, len(an.Series))
		rows := make([][]string, 0, len(an.Series)+2)
		var totalTokens int64
		var totalCost float64
		for i, p := range an.Series {
			tokens[i] = float64(p.TotalTokens)
			totalTokens += p.TotalTokens
			totalCost += p.TotalCost
			day := ""
			if t, err := time.Parse("2006-01-02", p.ISODate); err == nil {
				day = t.Format("Mon")
			}
			rows = append(rows, []string{
				p.ISODate,
				day,
				cli.FormatNumber(p.TotalTokens),
				cli.FormatCurrency(p.TotalCost),
			})
		}
		rows = append(rows, []string{"---"}, []string{
			"Total", "", cli.FormatNumber(totalTokens), cli.FormatCurrency(totalCost),
		})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Day", "Tokens", "Cost"},
			Rows:    rows,
		}))
		fmt.Printf("\n  %s  %s\n\n", cli.Muted("tokens"), cli.Colorize(cli.ColorAccent, cli.RenderSparkline(tokens)))
		return nil
	})
}
