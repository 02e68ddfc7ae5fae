package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/riftline/internal/database"
	"github.com/yourusername/riftline/internal/models"
)

// PostgresFixtureSource reads fixtures and markets from the odds feed tables.
// This system never writes to them.
type PostgresFixtureSource struct {
	db *database.DB
}

// NewPostgresFixtureSource creates a new fixture source
func NewPostgresFixtureSource(db *database.DB) FixtureSource {
	return &PostgresFixtureSource{db: db}
}

// GetFixture retrieves a single fixture by its feed identifier
func (r *PostgresFixtureSource) GetFixture(ctx context.Context, fixtureID int64) (*models.Fixture, error) {
	query := `
		SELECT fixture_id, league_name, home_team, away_team, start_time, status
		FROM fixtures
		WHERE fixture_id = $1
	`

	fixture := &models.Fixture{}
	err := r.db.GetPool().QueryRow(ctx, query, fixtureID).Scan(
		&fixture.FixtureID, &fixture.LeagueName, &fixture.HomeTeam,
		&fixture.AwayTeam, &fixture.StartTime, &fixture.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fixture: %w", err)
	}
	return fixture, nil
}

// GetFixtures retrieves fixtures starting within [from, to)
func (r *PostgresFixtureSource) GetFixtures(ctx context.Context, from, to time.Time) ([]models.Fixture, error) {
	query := `
		SELECT fixture_id, league_name, home_team, away_team, start_time, status
		FROM fixtures
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC, fixture_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var f models.Fixture
		if err := rows.Scan(&f.FixtureID, &f.LeagueName, &f.HomeTeam,
			&f.AwayTeam, &f.StartTime, &f.Status); err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, rows.Err()
}

// GetMarkets retrieves all priced over/under lines for a fixture
func (r *PostgresFixtureSource) GetMarkets(ctx context.Context, fixtureID int64) ([]models.Market, error) {
	query := `
		SELECT fixture_id, statistic_type, map_number, line_value, side, price, is_alternate
		FROM markets
		WHERE fixture_id = $1
		ORDER BY statistic_type, COALESCE(map_number, -1), line_value, side
	`

	rows, err := r.db.GetPool().Query(ctx, query, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	var markets []models.Market
	for rows.Next() {
		var m models.Market
		var priceRaw string
		if err := rows.Scan(&m.FixtureID, &m.StatisticType, &m.MapNumber,
			&m.LineValue, &m.Side, &priceRaw, &m.IsAlternate); err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		// Feed stores odds as the provider quoted them; unquotable prices
		// would make every downstream number wrong
		price, err := models.ParseOdds(priceRaw)
		if err != nil {
			return nil, fmt.Errorf("fixture %d market: %w", fixtureID, err)
		}
		m.Price = price
		markets = append(markets, m)
	}

	return markets, rows.Err()
}
