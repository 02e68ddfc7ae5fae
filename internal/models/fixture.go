package models

import (
	"time"
)

// Fixture represents an upcoming or past match as published by the odds feed.
// The feed is the source of truth for fixture identity; the historical archive
// shares no key with it, so matching happens by name and date.
type Fixture struct {
	FixtureID  int64     `db:"fixture_id" json:"fixture_id" validate:"required"`
	LeagueName string    `db:"league_name" json:"league_name" validate:"required"`
	HomeTeam   string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team" validate:"required"`
	StartTime  time.Time `db:"start_time" json:"start_time" validate:"required"`
	Status     string    `db:"status" json:"status"`
}

// IsUpcoming checks if the fixture hasn't started yet relative to now
func (f *Fixture) IsUpcoming(now time.Time) bool {
	return f.StartTime.After(now)
}

// NormalizedIdentity is a resolved league or team name in archive vocabulary.
// Derived, never persisted; recomputed per lookup.
type NormalizedIdentity struct {
	Kind          IdentityKind `json:"kind"`
	CanonicalName string       `json:"canonical_name"`
}

// IdentityKind distinguishes league and team lookups
type IdentityKind string

const (
	IdentityKindLeague IdentityKind = "league"
	IdentityKindTeam   IdentityKind = "team"
)
