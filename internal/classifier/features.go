package classifier

import (
	"fmt"
	"strings"

	"github.com/yourusername/riftline/internal/models"
)

// BuildFeatures produces the feature vector for a matched record's two team
// compositions, in the bundle's column order. Champions unknown to the
// bundle contribute zero impact.
func (b *Bundle) BuildFeatures(league string, compA, compB *models.Composition) ([]float64, error) {
	if compA == nil || compB == nil {
		return nil, fmt.Errorf("missing composition: %w", models.ErrClassifierUnavailable)
	}

	stats, ok := b.Stats(league)
	if !ok {
		return nil, fmt.Errorf("league %q not in bundle: %w", league, models.ErrClassifierUnavailable)
	}

	rolesA := compA.Roles()
	rolesB := compB.Roles()

	impactsA := make([]float64, 5)
	impactsB := make([]float64, 5)
	for i := 0; i < 5; i++ {
		impactsA[i] = b.Impact(league, rolesA[i])
		impactsB[i] = b.Impact(league, rolesB[i])
	}

	avgA := mean(impactsA)
	avgB := mean(impactsB)

	byName := map[string]float64{
		"league_mean":      stats.Mean,
		"league_std":       stats.Std,
		"team1_avg_impact": avgA,
		"team2_avg_impact": avgB,
		"impact_diff":      avgA - avgB,
		"top_t1_impact":    impactsA[0],
		"jung_t1_impact":   impactsA[1],
		"mid_t1_impact":    impactsA[2],
		"adc_t1_impact":    impactsA[3],
		"sup_t1_impact":    impactsA[4],
		"top_t2_impact":    impactsB[0],
		"jung_t2_impact":   impactsB[1],
		"mid_t2_impact":    impactsB[2],
		"adc_t2_impact":    impactsB[3],
		"sup_t2_impact":    impactsB[4],
	}

	features := make([]float64, len(b.FeatureColumns))
	for i, col := range b.FeatureColumns {
		if v, ok := byName[col]; ok {
			features[i] = v
			continue
		}
		if name, isOneHot := strings.CutPrefix(col, "league_onehot_"); isOneHot {
			if name == league {
				features[i] = 1.0
			}
			continue
		}
		// Verify() guarantees no other column names exist
	}

	return features, nil
}

// normalizeChampion collapses the whitespace and case quirks seen in
// archive composition data.
func normalizeChampion(name string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(name)), " ")
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
