package matcher

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/riftline/internal/models"
	"github.com/yourusername/riftline/internal/normalizer"
)

var testStart = time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

func testMatcher(t *testing.T) *Matcher {
	t.Helper()
	table := normalizer.NewTable(map[string][]string{
		"LCK": {"T1", "Gen.G", "KT Rolster"},
	})
	return New(table, DefaultTolerance, DefaultMinConfidence, nil)
}

func testFixture() *models.Fixture {
	return &models.Fixture{
		FixtureID:  101,
		LeagueName: "LCK",
		HomeTeam:   "T1",
		AwayTeam:   "Gen.G",
		StartTime:  testStart,
	}
}

func record(matchID string, seq int64, offset time.Duration, value float64) models.HistoricalRecord {
	return models.HistoricalRecord{
		MatchID:        matchID,
		League:         "LCK",
		TeamA:          "T1",
		TeamB:          "Gen.G",
		Date:           testStart.Add(offset),
		StatisticValue: &value,
		Seq:            seq,
	}
}

func TestMatchSelectsClosestRecord(t *testing.T) {
	m := testMatcher(t)

	records := []models.HistoricalRecord{
		record("far", 1, -72*time.Hour, 20),
		record("close", 2, 2*time.Hour, 25),
		record("middling", 3, 20*time.Hour, 30),
	}

	match, err := m.Match(testFixture(), records, Options{})
	require.NoError(t, err)
	assert.Equal(t, "close", match.Record.MatchID)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestMatchOrderInvariant(t *testing.T) {
	m := testMatcher(t)

	records := []models.HistoricalRecord{
		record("a", 1, 3*time.Hour, 20),
		record("b", 2, -3*time.Hour, 25),
		record("c", 3, 10*time.Hour, 30),
		record("d", 4, -10*time.Hour, 35),
	}

	base, err := m.Match(testFixture(), records, Options{})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		shuffled := append([]models.HistoricalRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(x, y int) { shuffled[x], shuffled[y] = shuffled[y], shuffled[x] })

		match, err := m.Match(testFixture(), shuffled, Options{})
		require.NoError(t, err)
		assert.Equal(t, base.Record.MatchID, match.Record.MatchID)
		assert.Equal(t, base.Confidence, match.Confidence)
	}
}

func TestMatchTieGoesToMostRecentInsert(t *testing.T) {
	m := testMatcher(t)

	// Identical timestamps: the higher insertion sequence wins
	records := []models.HistoricalRecord{
		record("older-insert", 5, time.Hour, 20),
		record("newer-insert", 9, time.Hour, 25),
	}

	match, err := m.Match(testFixture(), records, Options{})
	require.NoError(t, err)
	assert.Equal(t, "newer-insert", match.Record.MatchID)
}

func TestMatchConfidenceDecaysPastTolerance(t *testing.T) {
	m := testMatcher(t)

	tests := []struct {
		name   string
		offset time.Duration
		want   float64
	}{
		{name: "inside tolerance", offset: 23 * time.Hour, want: 1.0},
		{name: "at tolerance", offset: 24 * time.Hour, want: 1.0},
		{name: "half window past", offset: 48 * time.Hour, want: 0.5},
		{name: "clamped at floor", offset: 200 * time.Hour, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []models.HistoricalRecord{record("m", 1, tt.offset, 20)}
			match, err := m.Match(testFixture(), records, Options{})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, match.Confidence, 1e-9)
		})
	}
}

func TestMatchConfidenceMonotonicInDelta(t *testing.T) {
	m := testMatcher(t)

	prev := 1.1
	for _, hours := range []int{12, 24, 30, 36, 42, 48} {
		offset := time.Duration(hours) * time.Hour
		records := []models.HistoricalRecord{record("m", 1, offset, 20)}
		match, err := m.Match(testFixture(), records, Options{})
		require.NoError(t, err)
		assert.LessOrEqual(t, match.Confidence, prev, "offset %v", offset)
		prev = match.Confidence
	}
}

func TestMatchCaseFoldPenaltyRejectsBelowThreshold(t *testing.T) {
	m := testMatcher(t)

	// Case-folded team names still filter in, but the verbatim-teams condition
	// is violated, costing the identity penalty: 0.7 is still accepted.
	rec := record("folded", 1, time.Hour, 20)
	rec.TeamA = "t1"
	rec.TeamB = "gen.g"

	match, err := m.Match(testFixture(), []models.HistoricalRecord{rec}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, match.Confidence, 1e-9)

	// Stacking time decay on top drops below the minimum and is rejected
	rec.Date = testStart.Add(200 * time.Hour)
	_, err = m.Match(testFixture(), []models.HistoricalRecord{rec}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoHistoricalMatch))
}

func TestMatchMapNumberFilter(t *testing.T) {
	m := testMatcher(t)

	map1, map2 := 1, 2
	rec1 := record("map1", 1, time.Hour, 20)
	rec1.MapNumber = &map1
	rec2 := record("map2", 2, time.Hour, 30)
	rec2.MapNumber = &map2
	whole := record("whole", 3, time.Hour, 50)

	records := []models.HistoricalRecord{rec1, rec2, whole}

	match, err := m.Match(testFixture(), records, Options{MapNumber: &map2})
	require.NoError(t, err)
	assert.Equal(t, "map2", match.Record.MatchID)

	map3 := 3
	_, err = m.Match(testFixture(), records, Options{MapNumber: &map3})
	assert.True(t, errors.Is(err, models.ErrNoHistoricalMatch))
}

func TestMatchRequireComposition(t *testing.T) {
	m := testMatcher(t)

	bare := record("bare", 1, time.Hour, 20)
	withComps := record("comps", 2, 5*time.Hour, 25)
	withComps.CompositionA = &models.Composition{Top: "Aatrox", Jungle: "Vi", Mid: "Azir", Bot: "Jinx", Support: "Thresh"}
	withComps.CompositionB = &models.Composition{Top: "Gnar", Jungle: "Sejuani", Mid: "Ahri", Bot: "Ezreal", Support: "Rakan"}

	match, err := m.Match(testFixture(), []models.HistoricalRecord{bare, withComps}, Options{RequireComposition: true})
	require.NoError(t, err)
	assert.Equal(t, "comps", match.Record.MatchID)
}

func TestMatchUnresolvedNameFails(t *testing.T) {
	m := testMatcher(t)

	fixture := testFixture()
	fixture.HomeTeam = "Unknown Quantity"

	_, err := m.Match(fixture, []models.HistoricalRecord{record("m", 1, 0, 20)}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnresolvedName))
}

func TestMatchNoCandidates(t *testing.T) {
	m := testMatcher(t)

	rec := record("other-pair", 1, time.Hour, 20)
	rec.TeamB = "KT Rolster"

	_, err := m.Match(testFixture(), []models.HistoricalRecord{rec}, Options{})
	assert.True(t, errors.Is(err, models.ErrNoHistoricalMatch))
}
