package classifier

import (
	"fmt"
	"math"

	"github.com/yourusername/riftline/internal/models"
)

// DefaultConfidenceThreshold gates verdicts: below it the classifier
// abstains, which callers treat exactly like "classifier unavailable".
const DefaultConfidenceThreshold = 0.65

// Verdict is the classifier's line-specific output
type Verdict struct {
	Prediction       models.MarketSide `json:"prediction"`
	ProbabilityOver  float64           `json:"probability_over"`
	ProbabilityUnder float64           `json:"probability_under"`
	Confidence       float64           `json:"confidence"`
	ModelVersion     string            `json:"model_version"`
}

// ProbabilityFor returns the verdict's probability for the requested side
func (v *Verdict) ProbabilityFor(side models.MarketSide) float64 {
	if side == models.SideOver {
		return v.ProbabilityOver
	}
	return v.ProbabilityUnder
}

// Predictor runs two-stage inference against a verified bundle.
// It holds no mutable state and is safe to share across workers.
type Predictor struct {
	bundle              *Bundle
	confidenceThreshold float64
}

// NewPredictor wraps a bundle. A non-positive threshold falls back to the
// default confidence gate.
func NewPredictor(bundle *Bundle, confidenceThreshold float64) *Predictor {
	if confidenceThreshold <= 0 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	return &Predictor{bundle: bundle, confidenceThreshold: confidenceThreshold}
}

// PredictLine produces a verdict for an arbitrary betting line from the two
// team compositions. Stage A predicts P(statistic > league mean); Stage B
// shifts that probability to the offered line with the calibrated sigmoid.
// The confidence gate applies to the line probability, after adjustment: a
// confident base prediction that the line pulls back toward a coin flip
// abstains with ErrClassifierUnavailable like any other weak verdict.
func (p *Predictor) PredictLine(league string, compA, compB *models.Composition, line float64) (*Verdict, error) {
	features, err := p.bundle.BuildFeatures(league, compA, compB)
	if err != nil {
		return nil, err
	}

	pMean := p.baseProbability(features)

	stats, ok := p.bundle.Stats(league)
	if !ok {
		return nil, fmt.Errorf("league %q not in bundle: %w", league, models.ErrClassifierUnavailable)
	}

	pLine := AdjustToLine(pMean, line, stats, p.bundle.CalibrationOrFallback())

	confidence := math.Max(pLine, 1-pLine)
	if confidence < p.confidenceThreshold {
		return nil, fmt.Errorf("confidence %.3f below gate %.2f: %w",
			confidence, p.confidenceThreshold, models.ErrClassifierUnavailable)
	}

	prediction := models.SideUnder
	if pLine >= 0.5 {
		prediction = models.SideOver
	}

	return &Verdict{
		Prediction:       prediction,
		ProbabilityOver:  pLine,
		ProbabilityUnder: 1 - pLine,
		Confidence:       confidence,
		ModelVersion:     p.bundle.ModelVersion,
	}, nil
}

// baseProbability scales the feature vector and applies the logistic model
func (p *Predictor) baseProbability(features []float64) float64 {
	z := p.bundle.Intercept
	for i, x := range features {
		scale := p.bundle.ScalerScale[i]
		if scale == 0 {
			scale = 1
		}
		scaled := (x - p.bundle.ScalerMean[i]) / scale
		z += p.bundle.Weights[i] * scaled
	}
	return sigmoid(z)
}

// AdjustToLine converts the line-agnostic base probability into a probability
// for the offered line. A line above the league mean pulls P(over) down, a
// line below pushes it up, and a line exactly at the mean leaves the base
// probability untouched regardless of the calibration parameters.
func AdjustToLine(pMean, line float64, stats models.LeagueStats, cal CalibrationParams) float64 {
	if stats.Std <= 0 || line == stats.Mean {
		return clamp01(pMean)
	}

	z := (line - stats.Mean) / stats.Std
	adjustment := sigmoid(z * cal.SigmoidK)

	var pLine float64
	if line > stats.Mean {
		pLine = pMean * (1 - adjustment*cal.AdjustStrength)
	} else {
		pLine = pMean + (1-pMean)*adjustment*cal.AdjustStrength
	}
	return clamp01(pLine)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
