// Package empirical computes frequency-based probabilities from historical
// samples. It never reads classifier state; the two signals stay independent.
package empirical

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yourusername/riftline/internal/models"
)

// DefaultMinimumSample is the sample size below which callers should distrust
// the estimate. The estimate itself is still returned; deciding is on them.
const DefaultMinimumSample = 5

// Result is a frequency-based probability estimate for one market
type Result struct {
	Probability        float64 `json:"probability"`
	SampleSize         int     `json:"sample_size"`
	MeetsMinimumSample bool    `json:"meets_minimum_sample"`
}

// Estimate returns the empirical probability that the given side of the line
// hits, from a sample of realized statistic values. Strict inequalities: a
// value equal to the line counts toward neither side, mirroring the push rule
// at settlement. Fails with ErrInsufficientData on an empty sample.
func Estimate(side models.MarketSide, line float64, values []float64) (Result, error) {
	n := len(values)
	if n == 0 {
		return Result{}, fmt.Errorf("empty sample: %w", models.ErrInsufficientData)
	}

	hits := 0
	for _, v := range values {
		switch side {
		case models.SideOver:
			if v > line {
				hits++
			}
		case models.SideUnder:
			if v < line {
				hits++
			}
		}
	}

	return Result{
		Probability:        float64(hits) / float64(n),
		SampleSize:         n,
		MeetsMinimumSample: n >= DefaultMinimumSample,
	}, nil
}

// SampleStats summarizes the historical sample backing an estimate.
// Persisted on the bet for audit.
type SampleStats struct {
	Games        int       `json:"games"`
	Team1Games   int       `json:"team1_games"`
	Team2Games   int       `json:"team2_games"`
	Mean         float64   `json:"mean"`
	Median       float64   `json:"median"`
	Std          float64   `json:"std"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Q25          float64   `json:"q25"`
	Q75          float64   `json:"q75"`
	MeetsMinimum bool      `json:"meets_minimum"`
	Values       []float64 `json:"-"`
}

// CollectSample gathers the statistic values of every league map involving
// either team. Each map counts once even when both teams played in it.
// Returns ErrInsufficientData when no map carries a value.
func CollectSample(records []models.HistoricalRecord, league, team1, team2 string) (*SampleStats, error) {
	type entry struct {
		value float64
		seq   int64
	}

	seen := make(map[string]bool)
	var entries []entry
	team1Games, team2Games := 0, 0

	for i := range records {
		r := &records[i]
		if !strings.EqualFold(r.League, league) {
			continue
		}
		has1 := r.HasTeam(team1)
		has2 := r.HasTeam(team2)
		if !has1 && !has2 {
			continue
		}
		if seen[r.MatchID] {
			continue
		}
		seen[r.MatchID] = true
		if r.StatisticValue == nil {
			continue
		}
		// Counted only for maps that enter the sample, so the per-team
		// counts describe the same games as Games itself
		if has1 {
			team1Games++
		}
		if has2 {
			team2Games++
		}
		entries = append(entries, entry{value: *r.StatisticValue, seq: r.Seq})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%s/%s in %s: %w", team1, team2, league, models.ErrInsufficientData)
	}

	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}

	stats := describe(values)
	stats.Team1Games = team1Games
	stats.Team2Games = team2Games
	stats.Values = values
	return &stats, nil
}

// describe computes descriptive statistics over a non-empty value slice
func describe(values []float64) SampleStats {
	n := len(values)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	std := 0.0
	if n > 1 {
		ss := 0.0
		for _, v := range sorted {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return SampleStats{
		Games:        n,
		Mean:         mean,
		Median:       quantile(sorted, 0.5),
		Std:          std,
		Min:          sorted[0],
		Max:          sorted[n-1],
		Q25:          quantile(sorted, 0.25),
		Q75:          quantile(sorted, 0.75),
		MeetsMinimum: n >= DefaultMinimumSample,
	}
}

// quantile interpolates linearly over a sorted slice
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
