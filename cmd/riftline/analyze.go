package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/riftline/internal/engine"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		fixtureID int64
		hours     int
		modeFlag  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze upcoming fixtures for value markets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if modeFlag == "" {
				modeFlag = a.cfg.Analysis.Mode
			}
			mode, ok := engine.ParseMode(modeFlag)
			if !ok {
				return fmt.Errorf("unknown mode %q, want empirical, ml or auto", modeFlag)
			}

			analyzer := engine.NewAnalyzer(a.repos, a.table, a.match, a.log, engine.AnalyzerOptions{
				StatisticType:  a.cfg.Analysis.StatisticType,
				ValueThreshold: a.cfg.Analysis.ValueThreshold,
				MinimumSample:  a.cfg.Analysis.MinimumSample,
				Predictor:      loadPredictor(a.cfg, a.log),
			})

			if fixtureID != 0 {
				decisions, err := analyzer.AnalyzeFixture(ctx, fixtureID, mode)
				if err != nil {
					return err
				}
				printDecisions(fixtureID, decisions)
				return nil
			}

			now := time.Now().UTC()
			results, err := analyzer.AnalyzeBatch(ctx, now, now.Add(time.Duration(hours)*time.Hour), mode)
			if err != nil {
				return err
			}

			flagged := 0
			for _, res := range results {
				if res.Err != nil {
					continue
				}
				for _, md := range res.Decisions {
					if md.BetID != nil {
						flagged++
					}
				}
				printDecisions(res.Fixture.FixtureID, res.Decisions)
			}
			a.log.WithField("value_bets", flagged).Info("Batch analysis complete")
			return nil
		},
	}

	cmd.Flags().Int64Var(&fixtureID, "fixture", 0, "analyze a single fixture by id")
	cmd.Flags().IntVar(&hours, "hours", 48, "look-ahead window for batch analysis")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "analysis mode: empirical, ml or auto (default from config)")

	return cmd
}

func printDecisions(fixtureID int64, decisions []engine.MarketDecision) {
	for _, md := range decisions {
		if md.Err != nil {
			fmt.Printf("fixture %d %s %.1f %s: skipped (%v)\n",
				fixtureID, md.Market.StatisticType, md.Market.LineValue, md.Market.Side, md.Err)
			continue
		}
		if md.Decision == nil {
			continue
		}
		marker := " "
		if md.Decision.Value {
			marker = "*"
		}
		fmt.Printf("%s fixture %d %s %s %.1f @ %.2f ev=%+.3f edge=%+.1f%% method=%s\n",
			marker, fixtureID, md.Market.StatisticType, md.Market.Side,
			md.Market.LineValue, md.Market.Price,
			md.Decision.ExpectedValue, md.Decision.Edge, md.Decision.Method)
	}
}
