// Package matcher reconciles odds-feed fixtures with historical archive
// records. The two sources share no identifier, so matching goes through
// normalized names, the unordered team pair and date proximity.
package matcher

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/riftline/internal/models"
	"github.com/yourusername/riftline/internal/normalizer"
)

const (
	// DefaultTolerance is the date window within which a record is considered
	// an unpenalized match. Provider clocks differ, so it is generous.
	DefaultTolerance = 24 * time.Hour

	// DefaultMinConfidence is the score below which a match is rejected
	DefaultMinConfidence = 0.7

	// Penalty applied once per violated identity condition
	identityPenalty = 0.7

	// Confidence never decays below this floor for the time component
	decayFloor = 0.5
)

// Options controls optional match constraints
type Options struct {
	// RequireComposition restricts candidates to records carrying both team
	// compositions. The match fails when none in the filtered set has them.
	RequireComposition bool

	// MapNumber restricts candidates to a specific map. A bet on map 2 must
	// never settle against map 1 of the same series.
	MapNumber *int
}

// Match pairs the selected historical record with its confidence score
type Match struct {
	Record     *models.HistoricalRecord
	Confidence float64
}

// Result converts the match into the ephemeral MatchResult form
func (m *Match) Result() models.MatchResult {
	return models.MatchResult{
		HistoricalMatchID: m.Record.MatchID,
		Confidence:        m.Confidence,
		MatchedValue:      m.Record.StatisticValue,
	}
}

// Matcher finds the single best historical record for a fixture
type Matcher struct {
	table         *normalizer.Table
	tolerance     time.Duration
	minConfidence float64
	logger        *logrus.Logger
}

// New creates a matcher with the given identity table and thresholds.
// Zero values fall back to the defaults.
func New(table *normalizer.Table, tolerance time.Duration, minConfidence float64, logger *logrus.Logger) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Matcher{
		table:         table,
		tolerance:     tolerance,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Table returns the identity table the matcher normalizes with
func (m *Matcher) Table() *normalizer.Table {
	return m.table
}

// Match returns at most one historical record for the fixture. The result is
// deterministic: candidates are ranked by absolute time distance to the
// fixture start, and ties go to the most recently inserted record.
func (m *Matcher) Match(fixture *models.Fixture, records []models.HistoricalRecord, opts Options) (*Match, error) {
	league, ok := m.table.NormalizeLeague(fixture.LeagueName)
	if !ok {
		return nil, fmt.Errorf("league %q: %w", fixture.LeagueName, models.ErrUnresolvedName)
	}

	home, ok := m.table.NormalizeTeam(fixture.HomeTeam, league)
	if !ok {
		return nil, fmt.Errorf("team %q: %w", fixture.HomeTeam, models.ErrUnresolvedName)
	}

	away, ok := m.table.NormalizeTeam(fixture.AwayTeam, league)
	if !ok {
		return nil, fmt.Errorf("team %q: %w", fixture.AwayTeam, models.ErrUnresolvedName)
	}

	candidates := filterCandidates(records, league, home, away, opts)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s vs %s in %s: %w", home, away, league, models.ErrNoHistoricalMatch)
	}

	best := m.selectClosest(candidates, fixture.StartTime)
	confidence := m.confidence(best, fixture.StartTime, league, home, away)

	if confidence < m.minConfidence {
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"fixture_id": fixture.FixtureID,
				"match_id":   best.MatchID,
				"confidence": confidence,
			}).Warn("Historical match rejected below confidence threshold")
		}
		return nil, fmt.Errorf("confidence %.2f below %.2f: %w", confidence, m.minConfidence, models.ErrNoHistoricalMatch)
	}

	return &Match{Record: best, Confidence: confidence}, nil
}

// filterCandidates narrows records to the normalized league and unordered
// team pair, then applies the optional map and composition constraints.
func filterCandidates(records []models.HistoricalRecord, league, home, away string, opts Options) []*models.HistoricalRecord {
	var out []*models.HistoricalRecord
	for i := range records {
		r := &records[i]
		if !strings.EqualFold(r.League, league) {
			continue
		}
		if !pairEqualFold(r, home, away) {
			continue
		}
		if opts.MapNumber != nil {
			if r.MapNumber == nil || *r.MapNumber != *opts.MapNumber {
				continue
			}
		}
		if opts.RequireComposition && !r.HasComposition() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// selectClosest ranks candidates by absolute time distance to the fixture
// start. Equal distances resolve to the highest insertion sequence.
func (m *Matcher) selectClosest(candidates []*models.HistoricalRecord, start time.Time) *models.HistoricalRecord {
	sort.SliceStable(candidates, func(i, j int) bool {
		di := absDuration(candidates[i].Date.Sub(start))
		dj := absDuration(candidates[j].Date.Sub(start))
		if di != dj {
			return di < dj
		}
		return candidates[i].Seq > candidates[j].Seq
	})
	return candidates[0]
}

// confidence scores the selected record. Starts at 1.0; decays linearly once
// the time delta exceeds the tolerance window, reaching the floor one extra
// window-width past it; each violated identity condition costs a fixed
// multiplicative penalty.
func (m *Matcher) confidence(record *models.HistoricalRecord, start time.Time, league, home, away string) float64 {
	score := 1.0

	delta := absDuration(record.Date.Sub(start))
	if delta > m.tolerance {
		over := float64(delta-m.tolerance) / float64(2*m.tolerance)
		factor := 1.0 - over
		if factor < decayFloor {
			factor = decayFloor
		}
		score *= factor
	}

	if record.TeamA != home && record.TeamA != away ||
		record.TeamB != home && record.TeamB != away {
		score *= identityPenalty
	}

	if record.League != league {
		score *= identityPenalty
	}

	return score
}

func pairEqualFold(r *models.HistoricalRecord, team1, team2 string) bool {
	return (strings.EqualFold(r.TeamA, team1) && strings.EqualFold(r.TeamB, team2)) ||
		(strings.EqualFold(r.TeamA, team2) && strings.EqualFold(r.TeamB, team1))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
