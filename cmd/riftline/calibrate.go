package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/riftline/internal/classifier"
)

func newCalibrateCmd() *cobra.Command {
	var (
		samplesPath string
		bundlePath  string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Fit line-adjustment parameters and write an updated classifier bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := classifier.LoadBundle(bundlePath)
			if err != nil {
				return err
			}

			samples, err := loadSamples(samplesPath)
			if err != nil {
				return err
			}

			params, brier, err := classifier.Calibrate(samples, bundle.LeagueStats)
			if err != nil {
				return err
			}

			bundle.Calibration = &params
			if outPath == "" {
				outPath = bundlePath
			}
			if err := bundle.Save(outPath); err != nil {
				return err
			}

			fmt.Printf("calibrated sigmoid_k=%.2f adjust_strength=%.2f (brier %.4f, %d samples) -> %s\n",
				params.SigmoidK, params.AdjustStrength, brier, len(samples), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&samplesPath, "samples", "", "path to training samples JSON")
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "path to the classifier bundle to calibrate")
	cmd.Flags().StringVar(&outPath, "out", "", "output bundle path (defaults to overwriting the input)")
	_ = cmd.MarkFlagRequired("samples")
	_ = cmd.MarkFlagRequired("bundle")

	return cmd
}

func loadSamples(path string) ([]classifier.TrainingSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	var samples []classifier.TrainingSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse samples: %w", err)
	}
	return samples, nil
}
