package models

import (
	"time"
)

// Composition holds the five picks of one team, by role.
type Composition struct {
	Top     string `db:"top" json:"top"`
	Jungle  string `db:"jungle" json:"jungle"`
	Mid     string `db:"mid" json:"mid"`
	Bot     string `db:"bot" json:"bot"`
	Support string `db:"support" json:"support"`
}

// Roles returns the picks in the fixed role order used by the feature builder
func (c *Composition) Roles() [5]string {
	return [5]string{c.Top, c.Jungle, c.Mid, c.Bot, c.Support}
}

// HistoricalRecord represents one played map from the results archive.
// The archive is read-only to this system. Seq is the archive's insertion
// order and must increase monotonically; the matcher relies on it to break
// ties deterministically.
type HistoricalRecord struct {
	MatchID        string       `db:"match_id" json:"match_id" validate:"required"`
	League         string       `db:"league" json:"league" validate:"required"`
	TeamA          string       `db:"team_a" json:"team_a" validate:"required"`
	TeamB          string       `db:"team_b" json:"team_b" validate:"required"`
	MapNumber      *int         `db:"map_number" json:"map_number"`
	Date           time.Time    `db:"date" json:"date" validate:"required"`
	StatisticValue *float64     `db:"statistic_value" json:"statistic_value"`
	CompositionA   *Composition `db:"-" json:"composition_a,omitempty"`
	CompositionB   *Composition `db:"-" json:"composition_b,omitempty"`
	Seq            int64        `db:"seq" json:"seq"`
}

// HasTeam reports whether the record involves the given canonical team name
func (r *HistoricalRecord) HasTeam(team string) bool {
	return r.TeamA == team || r.TeamB == team
}

// HasPair reports whether the record is between the two teams, in either order
func (r *HistoricalRecord) HasPair(team1, team2 string) bool {
	return (r.TeamA == team1 && r.TeamB == team2) || (r.TeamA == team2 && r.TeamB == team1)
}

// HasComposition reports whether both team compositions are present
func (r *HistoricalRecord) HasComposition() bool {
	return r.CompositionA != nil && r.CompositionB != nil
}

// MatchResult is the matcher's output: the single best historical record
// for a fixture plus a confidence score in [0,1]. Ephemeral.
type MatchResult struct {
	HistoricalMatchID string   `json:"historical_match_id"`
	Confidence        float64  `json:"confidence"`
	MatchedValue      *float64 `json:"matched_value"`
}

// LeagueStats holds the archive-wide mean and standard deviation of the
// tracked statistic for one league. Recomputed as a batch step whenever the
// archive changes, never incrementally.
type LeagueStats struct {
	League string  `json:"league"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}
