// Package classifier loads a pre-trained line classifier artifact and runs
// two-stage inference: a base over/under-the-mean prediction from team
// compositions, then a calibrated adjustment to the offered line.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yourusername/riftline/internal/models"
)

// SchemaVersion is the bundle layout this build understands
const SchemaVersion = 2

// CalibrationParams are the line-adjustment parameters fit offline by the
// Brier-score grid search. The core only ever consumes them.
type CalibrationParams struct {
	SigmoidK       float64 `json:"sigmoid_k"`
	AdjustStrength float64 `json:"adjust_strength"`
}

// FallbackCalibration is used when a bundle predates calibration
var FallbackCalibration = CalibrationParams{SigmoidK: 0.5, AdjustStrength: 0.3}

// Bundle is the versioned classifier artifact: model weights, feature
// normalization, per-league champion impacts and stats, the feature-column
// order the weights were trained against, and calibration parameters.
// Everything is immutable after load and safe to share across workers.
type Bundle struct {
	SchemaVersion  int                           `json:"schema_version"`
	ModelVersion   string                        `json:"model_version"`
	FeatureColumns []string                      `json:"feature_columns"`
	Weights        []float64                     `json:"weights"`
	Intercept      float64                       `json:"intercept"`
	ScalerMean     []float64                     `json:"scaler_mean"`
	ScalerScale    []float64                     `json:"scaler_scale"`
	ChampionImpact map[string]map[string]float64 `json:"champion_impacts"`
	LeagueStats    map[string]models.LeagueStats `json:"league_stats"`
	Calibration    *CalibrationParams            `json:"calibration,omitempty"`
}

// LoadBundle reads and verifies a classifier bundle from disk.
// A missing file is reported as ErrClassifierUnavailable so callers degrade
// to empirical-only analysis.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("bundle %s: %w", path, models.ErrClassifierUnavailable)
		}
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}

	if err := bundle.Verify(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Save writes the bundle as indented JSON. Only the offline calibration job
// writes bundles; inference treats them as read-only.
func (b *Bundle) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// Verify rejects bundles whose feature-column list deviates from the schema
// this build derives from the bundle's own league list, or whose vector
// dimensions disagree. A rejected bundle is never partially used.
func (b *Bundle) Verify() error {
	if b.SchemaVersion != SchemaVersion {
		return fmt.Errorf("bundle schema version %d, want %d: %w",
			b.SchemaVersion, SchemaVersion, models.ErrClassifierUnavailable)
	}

	expected := ExpectedFeatureColumns(b.leagueNames())
	if len(b.FeatureColumns) != len(expected) {
		return fmt.Errorf("bundle has %d feature columns, want %d: %w",
			len(b.FeatureColumns), len(expected), models.ErrClassifierUnavailable)
	}
	for i, col := range expected {
		if b.FeatureColumns[i] != col {
			return fmt.Errorf("feature column %d is %q, want %q: %w",
				i, b.FeatureColumns[i], col, models.ErrClassifierUnavailable)
		}
	}

	n := len(b.FeatureColumns)
	if len(b.Weights) != n || len(b.ScalerMean) != n || len(b.ScalerScale) != n {
		return fmt.Errorf("weight/scaler dimensions do not match %d feature columns: %w",
			n, models.ErrClassifierUnavailable)
	}

	return nil
}

// CalibrationOrFallback returns the fitted parameters, or the hard-coded
// fallback pair when the bundle carries none.
func (b *Bundle) CalibrationOrFallback() CalibrationParams {
	if b.Calibration != nil {
		return *b.Calibration
	}
	return FallbackCalibration
}

// Stats returns the league stats, or false when the league is unknown to the
// bundle. Impacts and stats are only meaningful per league; cross-league
// reuse is forbidden.
func (b *Bundle) Stats(league string) (models.LeagueStats, bool) {
	stats, ok := b.LeagueStats[league]
	return stats, ok
}

// Impact returns the champion's impact in the league, zero when the champion
// is unknown or was below the minimum support at training time. Lookup is
// exact first, then case-insensitive; archives disagree on champion casing.
func (b *Bundle) Impact(league, champion string) float64 {
	impacts, ok := b.ChampionImpact[league]
	if !ok {
		return 0
	}

	name := normalizeChampion(champion)
	if name == "" {
		return 0
	}
	if v, ok := impacts[name]; ok {
		return v
	}

	lower := strings.ToLower(name)
	for key, v := range impacts {
		if strings.ToLower(key) == lower {
			return v
		}
	}
	return 0
}

func (b *Bundle) leagueNames() []string {
	names := make([]string, 0, len(b.LeagueStats))
	for league := range b.LeagueStats {
		names = append(names, league)
	}
	sort.Strings(names)
	return names
}

// ExpectedFeatureColumns is the canonical column order for a league list:
// the fifteen base features followed by one one-hot indicator per league,
// leagues sorted lexicographically.
func ExpectedFeatureColumns(leagues []string) []string {
	cols := []string{
		"league_mean",
		"league_std",
		"team1_avg_impact",
		"team2_avg_impact",
		"impact_diff",
		"top_t1_impact",
		"jung_t1_impact",
		"mid_t1_impact",
		"adc_t1_impact",
		"sup_t1_impact",
		"top_t2_impact",
		"jung_t2_impact",
		"mid_t2_impact",
		"adc_t2_impact",
		"sup_t2_impact",
	}

	sorted := append([]string(nil), leagues...)
	sort.Strings(sorted)
	for _, league := range sorted {
		cols = append(cols, "league_onehot_"+league)
	}
	return cols
}
