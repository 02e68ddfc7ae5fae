package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the persisted bet book",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.repos.Bets.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("total bets:   %d\n", stats.Total)
			fmt.Printf("resolved:     %d\n", stats.Resolved)
			fmt.Printf("record:       %dW-%dL (win rate %.1f%%)\n",
				stats.Wins, stats.Losses, stats.WinRate*100)
			fmt.Printf("avg EV:       %+.3f\n", stats.AvgEV)
			fmt.Printf("avg win odds: %.2f\n", stats.AvgWinOdds)
			fmt.Printf("unit P/L:     %+.2f\n", stats.UnitProfit)
			for status, n := range stats.ByStatus {
				fmt.Printf("  %-8s %d\n", status, n)
			}
			for method, n := range stats.ByMethod {
				fmt.Printf("  %-10s %d\n", method, n)
			}
			return nil
		},
	}
}
