package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Today's model usage breakdown",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	return withSnapshot(cmd, func(_ *runEnv, s *model.UsageSnapshot) error {
		an := report.BuildAnalytics(s, report.DefaultQuery(), time.Now())
		if len(an.Breakdown) == 0 {
			fmt.Println("\n  No model usage today.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("MODEL USAGE  Today"))
		fmt.Println()
		fmt.Print(renderBreakdown(an.Breakdown, an.Donut))
		fmt.Printf("\n  %s %.1f°\n\n", cli.Muted("Total rotation:"), an.DonutTotal)
		return nil
	})
}
