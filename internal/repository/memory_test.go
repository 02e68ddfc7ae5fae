package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/riftline/internal/models"
)

func sampleBet() *models.Bet {
	return &models.Bet{
		ID:                   uuid.New(),
		FixtureID:            101,
		LeagueName:           "X",
		HomeTeam:             "Alpha",
		AwayTeam:             "Beta",
		GameDate:             time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		StatisticType:        "total_kills",
		LineValue:            24.5,
		Side:                 models.SideOver,
		Price:                1.90,
		Method:               models.MethodEmpirical,
		EmpiricalProbability: 0.6,
		ImpliedProbability:   1 / 1.90,
		ExpectedValue:        0.14,
		Edge:                 14,
		Status:               models.BetStatusPending,
	}
}

func TestUpsertIdempotent(t *testing.T) {
	repo := NewMemoryBetRepository()
	ctx := context.Background()

	first := sampleBet()
	id1, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	// Same payload under a fresh uuid resolves to the original row
	second := sampleBet()
	id2, err := repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestUpsertDifferentPayloadRejected(t *testing.T) {
	repo := NewMemoryBetRepository()
	ctx := context.Background()

	_, err := repo.Upsert(ctx, sampleBet())
	require.NoError(t, err)

	clashing := sampleBet()
	clashing.Price = 2.10
	clashing.ExpectedValue = 0.26

	_, err = repo.Upsert(ctx, clashing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSchemaMismatch))
}

func TestUpsertMapNumberSeparatesKeys(t *testing.T) {
	repo := NewMemoryBetRepository()
	ctx := context.Background()

	whole := sampleBet()
	id1, err := repo.Upsert(ctx, whole)
	require.NoError(t, err)

	map1 := 1
	perMap := sampleBet()
	perMap.MapNumber = &map1
	id2, err := repo.Upsert(ctx, perMap)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2, "whole-match and per-map bets are distinct")
}

func TestUpdateResultAndStats(t *testing.T) {
	repo := NewMemoryBetRepository()
	ctx := context.Background()

	won := sampleBet()
	wonID, err := repo.Upsert(ctx, won)
	require.NoError(t, err)

	lost := sampleBet()
	lost.Side = models.SideUnder
	lostID, err := repo.Upsert(ctx, lost)
	require.NoError(t, err)

	realized := 28.0
	require.NoError(t, repo.UpdateResult(ctx, wonID, models.BetStatusWon, &realized))
	require.NoError(t, repo.UpdateResult(ctx, lostID, models.BetStatusLost, &realized))

	pending, err := repo.GetAwaitingResult(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-9)
	assert.InDelta(t, 1.90, stats.AvgWinOdds, 1e-9)
	assert.InDelta(t, -0.10, stats.UnitProfit, 1e-9)
}

func TestUpdateResultUnknownBet(t *testing.T) {
	repo := NewMemoryBetRepository()
	err := repo.UpdateResult(context.Background(), uuid.New(), models.BetStatusWon, nil)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMemoryArchiveInsertionOrder(t *testing.T) {
	archive := NewMemoryArchive()
	for i := 0; i < 5; i++ {
		archive.Add(models.HistoricalRecord{
			MatchID: string(rune('a' + i)),
			League:  "X",
			TeamA:   "Alpha",
			TeamB:   "Beta",
		})
	}

	records, err := archive.Query(context.Background(), "X")
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.Greater(t, records[i].Seq, records[i-1].Seq, "seq must increase monotonically")
	}
}
