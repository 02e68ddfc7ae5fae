package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/riftline/internal/database"
	"github.com/yourusername/riftline/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

const betColumns = `id, fixture_id, league_name, home_team, away_team, game_date,
	statistic_type, map_number, line_value, side, price, method,
	empirical_probability, implied_probability, expected_value, edge,
	historical_mean, historical_std, historical_games,
	status, result_value, result_date, created_at, updated_at`

// Upsert inserts a bet, or returns the existing id when the same bet was
// already derived. The uniqueness constraint does the serialization; there is
// no in-process locking because workers may run in separate processes.
// A key collision with a different payload is ErrSchemaMismatch.
func (r *PostgresBetRepository) Upsert(ctx context.Context, bet *models.Bet) (uuid.UUID, error) {
	query := `
		INSERT INTO bets (` + betColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (fixture_id, statistic_type, COALESCE(map_number, -1), line_value, side, method)
		DO NOTHING
		RETURNING id
	`

	now := time.Now().UTC()
	var id uuid.UUID
	err := r.db.GetPool().QueryRow(ctx, query,
		bet.ID, bet.FixtureID, bet.LeagueName, bet.HomeTeam, bet.AwayTeam, bet.GameDate,
		bet.StatisticType, bet.MapNumber, bet.LineValue, bet.Side, bet.Price, bet.Method,
		bet.EmpiricalProbability, bet.ImpliedProbability, bet.ExpectedValue, bet.Edge,
		bet.HistoricalMean, bet.HistoricalStd, bet.HistoricalGames,
		bet.Status, bet.ResultValue, bet.ResultDate, now, now,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("failed to insert bet: %w", err)
	}

	// Conflict: fetch the existing row and make sure this is a re-derivation,
	// not a silent overwrite of different data.
	existing, err := r.getByKey(ctx, bet)
	if err != nil {
		return uuid.Nil, err
	}
	if !existing.SamePayload(bet) {
		return uuid.Nil, fmt.Errorf(
			"fixture %d %s %s %.1f %s/%s: %w",
			bet.FixtureID, bet.StatisticType, bet.Side, bet.LineValue, bet.Method,
			existing.ID, models.ErrSchemaMismatch,
		)
	}
	return existing.ID, nil
}

func (r *PostgresBetRepository) getByKey(ctx context.Context, bet *models.Bet) (*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE fixture_id = $1 AND statistic_type = $2
		  AND COALESCE(map_number, -1) = COALESCE($3, -1)
		  AND line_value = $4 AND side = $5 AND method = $6
	`

	row := r.db.GetPool().QueryRow(ctx, query,
		bet.FixtureID, bet.StatisticType, bet.MapNumber, bet.LineValue, bet.Side, bet.Method)
	return scanBet(row)
}

// GetByID retrieves a bet by ID
func (r *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`
	return scanBet(r.db.GetPool().QueryRow(ctx, query, id))
}

// GetAwaitingResult retrieves bets whose outcome has not been resolved yet
func (r *PostgresBetRepository) GetAwaitingResult(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status IN ('pending', 'placed')
		ORDER BY game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// UpdateResult records the settlement outcome for a bet
func (r *PostgresBetRepository) UpdateResult(ctx context.Context, id uuid.UUID, status models.BetStatus, resultValue *float64) error {
	query := `
		UPDATE bets
		SET status = $2, result_value = $3, result_date = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query, id, status, resultValue)
	if err != nil {
		return fmt.Errorf("failed to update bet result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats aggregates the bet book for reporting
func (r *PostgresBetRepository) Stats(ctx context.Context) (*BetStats, error) {
	query := `
		SELECT status, method, COUNT(*),
		       COALESCE(AVG(expected_value), 0),
		       COALESCE(AVG(price) FILTER (WHERE status = 'won'), 0),
		       COALESCE(SUM(CASE status WHEN 'won' THEN price - 1 WHEN 'lost' THEN -1 ELSE 0 END), 0)
		FROM bets
		GROUP BY status, method
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet stats: %w", err)
	}
	defer rows.Close()

	stats := &BetStats{
		ByStatus: make(map[models.BetStatus]int),
		ByMethod: make(map[models.Method]int),
	}

	evSum := 0.0
	winOddsSum := 0.0
	for rows.Next() {
		var status models.BetStatus
		var method models.Method
		var count int
		var avgEV, avgWinOdds, unitProfit float64
		if err := rows.Scan(&status, &method, &count, &avgEV, &avgWinOdds, &unitProfit); err != nil {
			return nil, fmt.Errorf("failed to scan bet stats: %w", err)
		}

		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByMethod[method] += count
		stats.UnitProfit += unitProfit
		evSum += avgEV * float64(count)

		switch status {
		case models.BetStatusWon:
			stats.Wins += count
			winOddsSum += avgWinOdds * float64(count)
		case models.BetStatusLost:
			stats.Losses += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Resolved = stats.Wins + stats.Losses + stats.ByStatus[models.BetStatusVoid]
	if stats.Wins+stats.Losses > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Wins+stats.Losses)
	}
	if stats.Wins > 0 {
		stats.AvgWinOdds = winOddsSum / float64(stats.Wins)
	}
	if stats.Total > 0 {
		stats.AvgEV = evSum / float64(stats.Total)
	}

	return stats, nil
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	bet := &models.Bet{}
	err := row.Scan(
		&bet.ID, &bet.FixtureID, &bet.LeagueName, &bet.HomeTeam, &bet.AwayTeam, &bet.GameDate,
		&bet.StatisticType, &bet.MapNumber, &bet.LineValue, &bet.Side, &bet.Price, &bet.Method,
		&bet.EmpiricalProbability, &bet.ImpliedProbability, &bet.ExpectedValue, &bet.Edge,
		&bet.HistoricalMean, &bet.HistoricalStd, &bet.HistoricalGames,
		&bet.Status, &bet.ResultValue, &bet.ResultDate, &bet.CreatedAt, &bet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bet: %w", err)
	}
	return bet, nil
}
