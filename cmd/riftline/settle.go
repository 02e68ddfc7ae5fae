package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/riftline/internal/settlement"
)

func newSettleCmd() *cobra.Command {
	var betID string

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle unresolved bets against the results archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			resolver := settlement.NewResolver(a.repos.Bets, a.repos.Archive, a.match, a.log)

			if betID != "" {
				id, err := uuid.Parse(betID)
				if err != nil {
					return fmt.Errorf("invalid bet id %q: %w", betID, err)
				}
				outcome, err := resolver.Settle(ctx, id)
				if err != nil {
					return err
				}
				printOutcome(outcome)
				return nil
			}

			outcomes, err := resolver.SettleAll(ctx)
			if err != nil {
				return err
			}
			for i := range outcomes {
				printOutcome(&outcomes[i])
			}
			a.log.WithField("settled", len(outcomes)).Info("Settlement run complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&betID, "bet", "", "settle a single bet by id")

	return cmd
}

func printOutcome(o *settlement.Outcome) {
	if o.RealizedValue != nil {
		fmt.Printf("bet %s -> %s (realized %.1f)\n", o.BetID, o.Status, *o.RealizedValue)
		return
	}
	fmt.Printf("bet %s -> %s (no realized value)\n", o.BetID, o.Status)
}
