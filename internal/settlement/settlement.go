// Package settlement resolves persisted bets against realized results from
// the historical archive.
package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/riftline/internal/matcher"
	"github.com/yourusername/riftline/internal/metrics"
	"github.com/yourusername/riftline/internal/models"
	"github.com/yourusername/riftline/internal/repository"
)

// Resolve grades a bet against the realized statistic value. Pure: the same
// inputs always produce the same outcome, which keeps settlement reproducible
// for audits. A nil realized value voids the bet; a value exactly on the line
// is a push and also voids.
func Resolve(bet *models.Bet, realized *float64) (models.BetStatus, *float64) {
	if realized == nil {
		return models.BetStatusVoid, nil
	}

	v := *realized
	switch {
	case v == bet.LineValue:
		return models.BetStatusVoid, realized
	case bet.Side == models.SideOver && v > bet.LineValue,
		bet.Side == models.SideUnder && v < bet.LineValue:
		return models.BetStatusWon, realized
	default:
		return models.BetStatusLost, realized
	}
}

// Outcome is the result of settling one bet
type Outcome struct {
	BetID         uuid.UUID        `json:"bet_id"`
	Status        models.BetStatus `json:"status"`
	RealizedValue *float64         `json:"realized_value,omitempty"`
}

// Resolver wires the pure grading function to the archive and bet book
type Resolver struct {
	bets    repository.BetRepository
	archive repository.Archive
	matcher *matcher.Matcher
	logger  *logrus.Logger
}

// NewResolver creates a settlement resolver
func NewResolver(bets repository.BetRepository, archive repository.Archive, m *matcher.Matcher, logger *logrus.Logger) *Resolver {
	return &Resolver{bets: bets, archive: archive, matcher: m, logger: logger}
}

// Settle resolves one bet by id and persists the outcome. A bet whose fixture
// cannot be matched in the archive, or whose matched record carries no value,
// settles void. Already-resolved bets are returned as-is.
func (r *Resolver) Settle(ctx context.Context, betID uuid.UUID) (*Outcome, error) {
	bet, err := r.bets.GetByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.IsResolved() {
		return &Outcome{BetID: betID, Status: bet.Status, RealizedValue: bet.ResultValue}, nil
	}

	realized := r.realizedValue(ctx, bet)
	status, resultValue := Resolve(bet, realized)

	if err := r.bets.UpdateResult(ctx, betID, status, resultValue); err != nil {
		return nil, fmt.Errorf("failed to persist settlement: %w", err)
	}
	metrics.BetsSettledTotal.WithLabelValues(string(status)).Inc()

	if r.logger != nil {
		fields := logrus.Fields{
			"bet_id":     betID,
			"fixture_id": bet.FixtureID,
			"status":     status,
		}
		if resultValue != nil {
			fields["realized"] = *resultValue
		}
		r.logger.WithFields(fields).Info("Bet settled")
	}

	return &Outcome{BetID: betID, Status: status, RealizedValue: resultValue}, nil
}

// SettleAll settles every unresolved bet. Per-bet failures are logged and
// skipped; voids are terminal, an operator re-run is the retry mechanism.
func (r *Resolver) SettleAll(ctx context.Context) ([]Outcome, error) {
	pending, err := r.bets.GetAwaitingResult(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(pending))
	for _, bet := range pending {
		outcome, err := r.Settle(ctx, bet.ID)
		if err != nil {
			if r.logger != nil {
				r.logger.WithField("bet_id", bet.ID).WithError(err).Warn("Settlement failed, skipping bet")
			}
			continue
		}
		outcomes = append(outcomes, *outcome)
	}

	return outcomes, nil
}

// realizedValue finds the realized statistic for the bet's fixture. The bet's
// stored fixture snapshot drives the match, so settlement does not depend on
// the odds feed still carrying the fixture. A bet on a specific map only
// matches that map.
func (r *Resolver) realizedValue(ctx context.Context, bet *models.Bet) *float64 {
	fixture := &models.Fixture{
		FixtureID:  bet.FixtureID,
		LeagueName: bet.LeagueName,
		HomeTeam:   bet.HomeTeam,
		AwayTeam:   bet.AwayTeam,
		StartTime:  bet.GameDate,
	}

	league, ok := r.matcher.Table().NormalizeLeague(bet.LeagueName)
	if !ok {
		return nil
	}

	records, err := r.archive.Query(ctx, league)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("Archive query failed during settlement")
		}
		return nil
	}

	// No match within tolerance means there is nothing to grade against
	match, err := r.matcher.Match(fixture, records, matcher.Options{MapNumber: bet.MapNumber})
	if err != nil {
		return nil
	}

	return match.Record.StatisticValue
}
