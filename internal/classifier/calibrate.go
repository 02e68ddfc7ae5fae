package classifier

import (
	"fmt"

	"github.com/yourusername/riftline/internal/models"
)

// Grid searched by Calibrate. Coarse on purpose: the adjustment surface is
// smooth and a finer grid did not move the Brier score in training.
var (
	sigmoidKGrid       = gridRange(0.1, 2.0, 0.1)
	adjustStrengthGrid = gridRange(0.05, 0.80, 0.05)
)

// syntheticOffsets are the line positions, in league standard deviations,
// each training sample is replayed at during calibration.
var syntheticOffsets = []float64{-2.0, -1.0, -0.5, 0.0, 0.5, 1.0, 2.0}

// TrainingSample is one training-split observation: the Stage-A base
// probability the model produced for it and the statistic value actually
// realized.
type TrainingSample struct {
	League          string  `json:"league"`
	BaseProbability float64 `json:"base_probability"`
	RealizedValue   float64 `json:"realized_value"`
}

// Calibrate fits (sigmoid_k, adjust_strength) by grid search, minimizing the
// Brier score of the line-adjusted probability against realized over/under
// outcomes for synthetic lines around each league mean. This is an offline
// batch job; inference only ever consumes the result.
func Calibrate(samples []TrainingSample, leagueStats map[string]models.LeagueStats) (CalibrationParams, float64, error) {
	type row struct {
		pMean float64
		line  float64
		stats models.LeagueStats
		y     float64
	}

	var rows []row
	for _, s := range samples {
		stats, ok := leagueStats[s.League]
		if !ok || stats.Std <= 0 {
			continue
		}
		for _, off := range syntheticOffsets {
			line := stats.Mean + off*stats.Std
			y := 0.0
			if s.RealizedValue > line {
				y = 1.0
			}
			rows = append(rows, row{pMean: s.BaseProbability, line: line, stats: stats, y: y})
		}
	}

	if len(rows) == 0 {
		return FallbackCalibration, 0, fmt.Errorf("no calibratable samples: %w", models.ErrInsufficientData)
	}

	best := FallbackCalibration
	bestBrier := 1.0

	for _, sk := range sigmoidKGrid {
		for _, ast := range adjustStrengthGrid {
			cal := CalibrationParams{SigmoidK: sk, AdjustStrength: ast}
			sum := 0.0
			for _, r := range rows {
				pred := AdjustToLine(r.pMean, r.line, r.stats, cal)
				d := pred - r.y
				sum += d * d
			}
			brier := sum / float64(len(rows))
			if brier < bestBrier {
				bestBrier = brier
				best = cal
			}
		}
	}

	return best, bestBrier, nil
}

func gridRange(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to+step/2; v += step {
		// Round to two decimals so artifact values stay stable
		out = append(out, float64(int(v*100+0.5))/100)
	}
	return out
}
