// Package engine combines the empirical and classifier signals with the
// offered price into a value judgment for each market.
package engine

import (
	"github.com/yourusername/riftline/internal/classifier"
	"github.com/yourusername/riftline/internal/models"
)

// DefaultValueThreshold is the minimum expected value for flagging a market
const DefaultValueThreshold = 0.05

// Mode selects the analysis path. It is always an explicit caller choice,
// never inferred from which data happens to be present.
type Mode string

const (
	ModeEmpirical Mode = "empirical"
	ModeML        Mode = "ml"
	ModeAuto      Mode = "auto"
)

// ParseMode validates a mode string, defaulting to auto when empty
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeEmpirical, ModeML, ModeAuto:
		return Mode(s), true
	case "":
		return ModeAuto, true
	}
	return "", false
}

// Decision is the engine's judgment for one market
type Decision struct {
	Value         bool          `json:"value"`
	ExpectedValue float64       `json:"expected_value"`
	Edge          float64       `json:"edge"`
	Method        models.Method `json:"method"`

	// MLChecked and Convergence distinguish "ml checked but diverged" from
	// "ml never ran". Both are false on the empirical path.
	MLChecked   bool `json:"ml_checked"`
	Convergence bool `json:"convergence"`
}

// Decide evaluates one market. The empirical computation never reads
// classifier state: the verdict arrives precomputed (nil when the classifier
// abstained or is unavailable), so the two signals stay independent and
// individually testable.
func Decide(market *models.Market, empiricalProb, impliedProb float64, verdict *classifier.Verdict, mode Mode, valueThreshold float64) Decision {
	expectedValue := empiricalProb*market.Price - 1
	empiricalValue := empiricalProb > impliedProb && expectedValue >= valueThreshold

	d := Decision{
		ExpectedValue: expectedValue,
		Edge:          expectedValue * 100,
	}

	if mode == ModeAuto {
		if verdict != nil {
			mode = ModeML
		} else {
			mode = ModeEmpirical
		}
	}

	switch mode {
	case ModeML:
		d.Method = models.MethodML
		d.MLChecked = verdict != nil
		d.Convergence = verdict != nil && verdict.Prediction == market.Side
		d.Value = empiricalValue && d.Convergence
	default:
		d.Method = models.MethodEmpirical
		d.Value = empiricalValue
	}

	return d
}
