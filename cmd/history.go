package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

var (
	flagHistorySince time.Duration
	flagHistoryLimit int
	flagHistoryPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Snapshots recorded by the cache",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().DurationVar(&flagHistorySince, "since", 24*time.Hour, "How far back to list")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "Most recent rows to show (0 for all)")
	historyCmd.Flags().DurationVar(&flagHistoryPrune, "prune", 0, "Delete rows older than this before listing")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(store.DefaultPath())
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if flagHistoryPrune > 0 {
		n, err := cache.Prune(time.Now().Add(-flagHistoryPrune))
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		if !flagQuiet {
			fmt.Printf("  Pruned %d rows\n", n)
		}
	}

	points, err := cache.History(time.Now().Add(-flagHistorySince), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	total, _ := cache.Count()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SNAPSHOT HISTORY  %d of %d rows", len(points), total)))
	fmt.Println()

	if last, err := cache.LastGood(); err == nil {
		fmt.Printf("  %s %s (%s, %s)\n\n", cli.Muted("Last good:"),
			last.CapturedAt.Local().Format("2006-01-02 15:04:05"), last.Origin, cli.FormatAgo(last.CapturedAt))
	} else if !errors.Is(err, store.ErrEmpty) {
		return err
	}

	if len(points) == 0 {
		fmt.Println("  No snapshots recorded in this period.")
		return nil
	}

	pct := make([]float64, len(points))
	rows := make([][]string, 0, len(points))
	for i, p := range points {
		pct[i] = p.PercentageUsed
		rows = append(rows, []string{
			p.CapturedAt.Local().Format("01-02 15:04:05"),
			cli.FormatNumber(p.TokensUsed),
			cli.FormatPercent(p.PercentageUsed),
			cli.FormatCompact(p.BurnRate) + "/hr",
			cli.FormatCurrency(p.TodayCost),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Captured", "Tokens", "Used", "Burn", "Cost today"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %s  %s\n\n", cli.Muted("used"), cli.Colorize(cli.ColorAccent, cli.RenderSparkline(pct)))
	return nil
}
