package models

import (
	"time"

	"github.com/google/uuid"
)

// Method identifies which analysis path produced a decision
type Method string

const (
	MethodEmpirical Method = "empirical"
	MethodML        Method = "ml"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusPlaced  BetStatus = "placed"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"
)

// Bet represents a value bet flagged by the decision engine. A bet is
// uniquely identified by (fixture_id, statistic_type, map_number, line_value,
// side, method); re-deriving an identical bet is a no-op insert.
type Bet struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	FixtureID int64     `db:"fixture_id" json:"fixture_id" validate:"required"`

	// Fixture snapshot at decision time, for audit and settlement matching
	LeagueName string    `db:"league_name" json:"league_name" validate:"required"`
	HomeTeam   string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team" validate:"required"`
	GameDate   time.Time `db:"game_date" json:"game_date" validate:"required"`

	// Market snapshot
	StatisticType string     `db:"statistic_type" json:"statistic_type" validate:"required"`
	MapNumber     *int       `db:"map_number" json:"map_number"`
	LineValue     float64    `db:"line_value" json:"line_value" validate:"required"`
	Side          MarketSide `db:"side" json:"side" validate:"required,oneof=over under"`
	Price         float64    `db:"price" json:"price" validate:"required,gt=1"`

	// Analysis snapshot
	Method               Method  `db:"method" json:"method" validate:"required,oneof=empirical ml"`
	EmpiricalProbability float64 `db:"empirical_probability" json:"empirical_probability" validate:"gte=0,lte=1"`
	ImpliedProbability   float64 `db:"implied_probability" json:"implied_probability" validate:"gte=0,lte=1"`
	ExpectedValue        float64 `db:"expected_value" json:"expected_value"`
	Edge                 float64 `db:"edge" json:"edge"`
	HistoricalMean       float64 `db:"historical_mean" json:"historical_mean"`
	HistoricalStd        float64 `db:"historical_std" json:"historical_std"`
	HistoricalGames      int     `db:"historical_games" json:"historical_games"`

	Status      BetStatus  `db:"status" json:"status" validate:"required"`
	ResultValue *float64   `db:"result_value" json:"result_value"`
	ResultDate  *time.Time `db:"result_date" json:"result_date"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsResolved checks if the bet reached a terminal status
func (b *Bet) IsResolved() bool {
	switch b.Status {
	case BetStatusWon, BetStatusLost, BetStatusVoid:
		return true
	}
	return false
}

// ProfitLoss returns the realized profit or loss for a unit stake.
// Zero for unresolved or void bets.
func (b *Bet) ProfitLoss() float64 {
	switch b.Status {
	case BetStatusWon:
		return b.Price - 1.0
	case BetStatusLost:
		return -1.0
	}
	return 0
}

// SamePayload reports whether another bet carries the same analysis payload
// for the same uniqueness key. Used by the store to distinguish an idempotent
// re-insert from a key collision with different data.
func (b *Bet) SamePayload(other *Bet) bool {
	const eps = 1e-9
	return b.Price == other.Price &&
		absDiff(b.EmpiricalProbability, other.EmpiricalProbability) < eps &&
		absDiff(b.ExpectedValue, other.ExpectedValue) < eps &&
		absDiff(b.Edge, other.Edge) < eps
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
