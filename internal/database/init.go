package database

import (
	"context"
	"fmt"
)

// Schema for the bet book. The composite unique index is what makes the
// insert idempotent across worker processes; COALESCE folds NULL map_number
// into the key so whole-match and per-map bets never collide.
const betsSchema = `
CREATE TABLE IF NOT EXISTS bets (
	id UUID PRIMARY KEY,
	fixture_id BIGINT NOT NULL,
	league_name TEXT NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	game_date TIMESTAMPTZ NOT NULL,
	statistic_type TEXT NOT NULL,
	map_number INT,
	line_value DOUBLE PRECISION NOT NULL,
	side TEXT NOT NULL CHECK (side IN ('over', 'under')),
	price DOUBLE PRECISION NOT NULL CHECK (price > 1),
	method TEXT NOT NULL CHECK (method IN ('empirical', 'ml')),
	empirical_probability DOUBLE PRECISION NOT NULL,
	implied_probability DOUBLE PRECISION NOT NULL,
	expected_value DOUBLE PRECISION NOT NULL,
	edge DOUBLE PRECISION NOT NULL,
	historical_mean DOUBLE PRECISION NOT NULL DEFAULT 0,
	historical_std DOUBLE PRECISION NOT NULL DEFAULT 0,
	historical_games INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'placed', 'won', 'lost', 'void')),
	result_value DOUBLE PRECISION,
	result_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_bets_identity
	ON bets (fixture_id, statistic_type, COALESCE(map_number, -1), line_value, side, method);

CREATE INDEX IF NOT EXISTS idx_bets_status ON bets (status);
CREATE INDEX IF NOT EXISTS idx_bets_game_date ON bets (game_date);
`

// InitSchema creates the bet book tables and indexes if absent
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, betsSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
