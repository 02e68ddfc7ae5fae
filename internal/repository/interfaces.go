// Package repository provides data access interfaces and their PostgreSQL
// implementations.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/riftline/internal/models"
)

// FixtureSource exposes the odds feed's fixtures and priced markets.
// Read-only: ingestion is a separate system.
type FixtureSource interface {
	GetFixture(ctx context.Context, fixtureID int64) (*models.Fixture, error)
	GetFixtures(ctx context.Context, from, to time.Time) ([]models.Fixture, error)
	GetMarkets(ctx context.Context, fixtureID int64) ([]models.Market, error)
}

// Archive exposes the historical results dataset. Read-only; records are
// returned in insertion order so matcher tie-breaking stays deterministic.
type Archive interface {
	Query(ctx context.Context, league string) ([]models.HistoricalRecord, error)
	Composition(ctx context.Context, matchID string) (*models.Composition, *models.Composition, error)
}

// BetRepository persists decision-engine output. Upsert is keyed on
// (fixture_id, statistic_type, map_number, line_value, side, method):
// an identical payload returns the existing row's id, a different payload
// under the same key is ErrSchemaMismatch.
type BetRepository interface {
	Upsert(ctx context.Context, bet *models.Bet) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	GetAwaitingResult(ctx context.Context) ([]*models.Bet, error)
	UpdateResult(ctx context.Context, id uuid.UUID, status models.BetStatus, resultValue *float64) error
	Stats(ctx context.Context) (*BetStats, error)
}

// BetStats aggregates the persisted bet book
type BetStats struct {
	Total      int                      `json:"total"`
	ByStatus   map[models.BetStatus]int `json:"by_status"`
	ByMethod   map[models.Method]int    `json:"by_method"`
	Resolved   int                      `json:"resolved"`
	Wins       int                      `json:"wins"`
	Losses     int                      `json:"losses"`
	WinRate    float64                  `json:"win_rate"`
	AvgWinOdds float64                  `json:"avg_win_odds"`
	AvgEV      float64                  `json:"avg_ev"`
	UnitProfit float64                  `json:"unit_profit"`
}

// Repositories holds all repository implementations
type Repositories struct {
	Fixtures FixtureSource
	Archive  Archive
	Bets     BetRepository
}
