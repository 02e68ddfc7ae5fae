package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/riftline/internal/matcher"
	"github.com/yourusername/riftline/internal/models"
	"github.com/yourusername/riftline/internal/normalizer"
	"github.com/yourusername/riftline/internal/repository"
)

func fptr(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		side     models.MarketSide
		line     float64
		realized *float64
		want     models.BetStatus
	}{
		{name: "over wins above line", side: models.SideOver, line: 20, realized: fptr(25), want: models.BetStatusWon},
		{name: "over pushes on line", side: models.SideOver, line: 20, realized: fptr(20), want: models.BetStatusVoid},
		{name: "over loses below line", side: models.SideOver, line: 20, realized: fptr(15), want: models.BetStatusLost},
		{name: "under wins below line", side: models.SideUnder, line: 20, realized: fptr(15), want: models.BetStatusWon},
		{name: "under pushes on line", side: models.SideUnder, line: 20, realized: fptr(20), want: models.BetStatusVoid},
		{name: "under loses above line", side: models.SideUnder, line: 20, realized: fptr(25), want: models.BetStatusLost},
		{name: "missing value voids", side: models.SideOver, line: 20, realized: nil, want: models.BetStatusVoid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := &models.Bet{Side: tt.side, LineValue: tt.line}
			status, value := Resolve(bet, tt.realized)
			assert.Equal(t, tt.want, status)
			if tt.realized == nil {
				assert.Nil(t, value)
			} else {
				require.NotNil(t, value)
				assert.Equal(t, *tt.realized, *value)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	bet := &models.Bet{Side: models.SideOver, LineValue: 24.5}
	realized := fptr(28)

	first, _ := Resolve(bet, realized)
	for i := 0; i < 10; i++ {
		status, _ := Resolve(bet, realized)
		assert.Equal(t, first, status)
	}
}

func testResolver(t *testing.T) (*Resolver, *repository.MemoryBetRepository, *repository.MemoryArchive) {
	t.Helper()

	table := normalizer.NewTable(map[string][]string{
		"X": {"Alpha", "Beta"},
	})
	archive := repository.NewMemoryArchive()
	bets := repository.NewMemoryBetRepository()
	m := matcher.New(table, 0, 0, nil)

	return NewResolver(bets, archive, m, nil), bets, archive
}

func pendingBet(t *testing.T, bets *repository.MemoryBetRepository, side models.MarketSide, line float64, mapNumber *int) uuid.UUID {
	t.Helper()

	bet := &models.Bet{
		ID:            uuid.New(),
		FixtureID:     101,
		LeagueName:    "X",
		HomeTeam:      "Alpha",
		AwayTeam:      "Beta",
		GameDate:      time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		StatisticType: "total_kills",
		MapNumber:     mapNumber,
		LineValue:     line,
		Side:          side,
		Price:         1.90,
		Method:        models.MethodEmpirical,
		Status:        models.BetStatusPending,
	}
	id, err := bets.Upsert(context.Background(), bet)
	require.NoError(t, err)
	return id
}

func TestSettleWonRoundTrip(t *testing.T) {
	resolver, bets, archive := testResolver(t)
	id := pendingBet(t, bets, models.SideOver, 20, nil)

	archive.Add(models.HistoricalRecord{
		MatchID:        "m1",
		League:         "X",
		TeamA:          "Alpha",
		TeamB:          "Beta",
		Date:           time.Date(2026, 4, 2, 19, 30, 0, 0, time.UTC),
		StatisticValue: fptr(25),
	})

	outcome, err := resolver.Settle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusWon, outcome.Status)
	require.NotNil(t, outcome.RealizedValue)
	assert.Equal(t, 25.0, *outcome.RealizedValue)

	bet, err := bets.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusWon, bet.Status)
	assert.InDelta(t, 0.9, bet.ProfitLoss(), 1e-9)
}

func TestSettleVoidsWhenNoMatch(t *testing.T) {
	resolver, bets, _ := testResolver(t)
	id := pendingBet(t, bets, models.SideOver, 20, nil)

	outcome, err := resolver.Settle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusVoid, outcome.Status)
	assert.Nil(t, outcome.RealizedValue)
}

func TestSettleVoidsWhenMatchedValueMissing(t *testing.T) {
	resolver, bets, archive := testResolver(t)
	id := pendingBet(t, bets, models.SideUnder, 20, nil)

	archive.Add(models.HistoricalRecord{
		MatchID: "m1",
		League:  "X",
		TeamA:   "Alpha",
		TeamB:   "Beta",
		Date:    time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
	})

	outcome, err := resolver.Settle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusVoid, outcome.Status)
}

func TestSettleMatchesSpecificMap(t *testing.T) {
	resolver, bets, archive := testResolver(t)
	map2 := 2
	id := pendingBet(t, bets, models.SideOver, 20, &map2)

	map1 := 1
	archive.Add(models.HistoricalRecord{
		MatchID:        "m1",
		League:         "X",
		TeamA:          "Alpha",
		TeamB:          "Beta",
		MapNumber:      &map1,
		Date:           time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		StatisticValue: fptr(50),
	})
	archive.Add(models.HistoricalRecord{
		MatchID:        "m2",
		League:         "X",
		TeamA:          "Alpha",
		TeamB:          "Beta",
		MapNumber:      &map2,
		Date:           time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		StatisticValue: fptr(18),
	})

	outcome, err := resolver.Settle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusLost, outcome.Status, "map 2 realized 18, not map 1's 50")
}

func TestSettleResolvedBetUntouched(t *testing.T) {
	resolver, bets, _ := testResolver(t)
	id := pendingBet(t, bets, models.SideOver, 20, nil)

	require.NoError(t, bets.UpdateResult(context.Background(), id, models.BetStatusWon, fptr(25)))

	outcome, err := resolver.Settle(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusWon, outcome.Status)
}

func TestSettleAll(t *testing.T) {
	resolver, bets, archive := testResolver(t)
	idWon := pendingBet(t, bets, models.SideOver, 20, nil)
	idLost := pendingBet(t, bets, models.SideUnder, 20, nil)

	archive.Add(models.HistoricalRecord{
		MatchID:        "m1",
		League:         "X",
		TeamA:          "Alpha",
		TeamB:          "Beta",
		Date:           time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		StatisticValue: fptr(25),
	})

	outcomes, err := resolver.SettleAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	won, err := bets.GetByID(context.Background(), idWon)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusWon, won.Status)

	lost, err := bets.GetByID(context.Background(), idLost)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusLost, lost.Status)
}
