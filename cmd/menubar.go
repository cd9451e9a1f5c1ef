package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
)

var flagTick int

var menubarCmd = &cobra.Command{
	Use:   "menubar",
	Short: "Print the one-line menu bar status",
	Long: "Print the menu bar text. The display mode and cost source come from the " +
		"menuBarDisplayMode and menuBarCostSource preferences; in alternate mode " +
		"--tick picks the frame (even: percentage, odd: cost).",
	RunE: runMenubar,
}

func init() {
	menubarCmd.Flags().IntVar(&flagTick, "tick", 0, "Alternate mode frame counter")
	rootCmd.AddCommand(menubarCmd)
}

func runMenubar(cmd *cobra.Command, _ []string) error {
	return withSnapshot(cmd, func(e *runEnv, s *model.UsageSnapshot) error {
		fmt.Println(report.MenuBarText(s, e.prefs, e.policy, flagTick))
		return nil
	})
}
