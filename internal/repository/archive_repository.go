package repository

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/riftline/internal/database"
	"github.com/yourusername/riftline/internal/models"
)

// PostgresArchive reads the historical results archive. League queries are
// cached briefly because one batch run touches the same league many times.
type PostgresArchive struct {
	db    *database.DB
	cache *gocache.Cache
}

// NewPostgresArchive creates a new archive reader
func NewPostgresArchive(db *database.DB) Archive {
	return &PostgresArchive{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Query returns all archive records for a league, in insertion order
func (r *PostgresArchive) Query(ctx context.Context, league string) ([]models.HistoricalRecord, error) {
	if cached, found := r.cache.Get(league); found {
		return cached.([]models.HistoricalRecord), nil
	}

	query := `
		SELECT match_id, league, team_a, team_b, map_number, date, statistic_value, seq
		FROM historical_matches
		WHERE league = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, league)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var records []models.HistoricalRecord
	for rows.Next() {
		var rec models.HistoricalRecord
		if err := rows.Scan(&rec.MatchID, &rec.League, &rec.TeamA, &rec.TeamB,
			&rec.MapNumber, &rec.Date, &rec.StatisticValue, &rec.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan archive record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.cache.Set(league, records, gocache.DefaultExpiration)
	return records, nil
}

// LoadIdentities returns the archive's canonical league -> team names mapping,
// used to seed the normalizer when no identity table file is supplied.
func LoadIdentities(ctx context.Context, db *database.DB) (map[string][]string, error) {
	query := `
		SELECT DISTINCT league, team FROM (
			SELECT league, team_a AS team FROM historical_matches
			UNION
			SELECT league, team_b AS team FROM historical_matches
		) names
		ORDER BY league, team
	`

	rows, err := db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive identities: %w", err)
	}
	defer rows.Close()

	identities := make(map[string][]string)
	for rows.Next() {
		var league, team string
		if err := rows.Scan(&league, &team); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities[league] = append(identities[league], team)
	}
	return identities, rows.Err()
}

// Composition returns both team compositions for a match, or nils when the
// archive has no pick data for it. Missing pick data is not an error; the
// classifier path simply abstains.
func (r *PostgresArchive) Composition(ctx context.Context, matchID string) (*models.Composition, *models.Composition, error) {
	query := `
		SELECT team_slot, top_pick, jungle_pick, mid_pick, bot_pick, support_pick
		FROM match_compositions
		WHERE match_id = $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query compositions: %w", err)
	}
	defer rows.Close()

	var compA, compB *models.Composition
	for rows.Next() {
		var slot string
		comp := &models.Composition{}
		if err := rows.Scan(&slot, &comp.Top, &comp.Jungle, &comp.Mid,
			&comp.Bot, &comp.Support); err != nil {
			return nil, nil, fmt.Errorf("failed to scan composition: %w", err)
		}
		switch slot {
		case "a":
			compA = comp
		case "b":
			compB = comp
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return compA, compB, nil
}
