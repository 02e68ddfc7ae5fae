package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/riftline/internal/classifier"
	"github.com/yourusername/riftline/internal/empirical"
	"github.com/yourusername/riftline/internal/matcher"
	"github.com/yourusername/riftline/internal/metrics"
	"github.com/yourusername/riftline/internal/models"
	"github.com/yourusername/riftline/internal/normalizer"
	"github.com/yourusername/riftline/internal/repository"
)

// MarketDecision pairs a market with the engine's judgment for it. Err is set
// when this market was skipped; the rest of the fixture still proceeds.
type MarketDecision struct {
	Market    models.Market     `json:"market"`
	Decision  *Decision         `json:"decision,omitempty"`
	Empirical *empirical.Result `json:"empirical,omitempty"`

	// MeanAligned marks markets where the historical mean already sits on the
	// bet's side of the line: over below the mean, under above it.
	MeanAligned bool `json:"mean_aligned"`

	BetID *uuid.UUID `json:"bet_id,omitempty"`
	Err   error      `json:"-"`
}

// FixtureAnalysis is one fixture's batch result
type FixtureAnalysis struct {
	Fixture   models.Fixture   `json:"fixture"`
	Decisions []MarketDecision `json:"decisions"`
	Err       error            `json:"-"`
}

// Analyzer runs the full per-fixture pipeline: identity resolution, history
// collection, both probability signals, the value decision and persistence.
type Analyzer struct {
	fixtures  repository.FixtureSource
	archive   repository.Archive
	bets      repository.BetRepository
	table     *normalizer.Table
	matcher   *matcher.Matcher
	predictor *classifier.Predictor
	logger    *logrus.Logger

	statisticType  string
	valueThreshold float64
	minimumSample  int
}

// AnalyzerOptions configures an Analyzer. Predictor may be nil; the pipeline
// then runs empirical-only regardless of the requested mode.
type AnalyzerOptions struct {
	StatisticType  string
	ValueThreshold float64
	MinimumSample  int
	Predictor      *classifier.Predictor
}

// NewAnalyzer wires the pipeline. Zero option values fall back to defaults.
func NewAnalyzer(repos *repository.Repositories, table *normalizer.Table, m *matcher.Matcher, logger *logrus.Logger, opts AnalyzerOptions) *Analyzer {
	if opts.ValueThreshold <= 0 {
		opts.ValueThreshold = DefaultValueThreshold
	}
	if opts.MinimumSample <= 0 {
		opts.MinimumSample = empirical.DefaultMinimumSample
	}
	return &Analyzer{
		fixtures:       repos.Fixtures,
		archive:        repos.Archive,
		bets:           repos.Bets,
		table:          table,
		matcher:        m,
		predictor:      opts.Predictor,
		logger:         logger,
		statisticType:  opts.StatisticType,
		valueThreshold: opts.ValueThreshold,
		minimumSample:  opts.MinimumSample,
	}
}

// AnalyzeFixture runs the pipeline for one fixture and returns a decision per
// tracked market. Per-market failures are recorded on the decision and do not
// abort the fixture; a key collision with a different payload does, because
// silently overwriting a persisted bet is never acceptable.
func (a *Analyzer) AnalyzeFixture(ctx context.Context, fixtureID int64, mode Mode) ([]MarketDecision, error) {
	start := time.Now()
	defer func() {
		metrics.FixtureAnalysisDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.FixturesAnalyzedTotal.Inc()

	fixture, err := a.fixtures.GetFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	league, home, away, err := a.resolveIdentities(fixture)
	if err != nil {
		metrics.NormalizationFailuresTotal.Inc()
		return nil, err
	}

	markets, err := a.fixtures.GetMarkets(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	markets = a.filterMarkets(markets)
	if len(markets) == 0 {
		return nil, nil
	}

	records, err := a.archive.Query(ctx, league)
	if err != nil {
		return nil, err
	}

	sample, sampleErr := empirical.CollectSample(records, league, home, away)

	compA, compB := a.lookupCompositions(ctx, fixture, records, mode)

	decisions := make([]MarketDecision, 0, len(markets))
	for i := range markets {
		market := markets[i]
		md := MarketDecision{Market: market}

		if sampleErr != nil {
			md.Err = sampleErr
			decisions = append(decisions, md)
			continue
		}

		result, err := empirical.Estimate(market.Side, market.LineValue, sample.Values)
		if err != nil {
			md.Err = err
			decisions = append(decisions, md)
			continue
		}
		md.Empirical = &result
		md.MeanAligned = meanAligned(market.Side, market.LineValue, sample.Mean)

		verdict := a.verdictFor(league, compA, compB, market.LineValue, mode)

		decision := Decide(&market, result.Probability, market.ImpliedProbability(), verdict, mode, a.valueThreshold)
		md.Decision = &decision
		metrics.DecisionsTotal.WithLabelValues(string(decision.Method), fmt.Sprintf("%t", decision.Value)).Inc()

		if decision.Value && sample.Games >= a.minimumSample {
			betID, err := a.persistBet(ctx, fixture, &market, &decision, result.Probability, sample)
			if err != nil {
				if errors.Is(err, models.ErrSchemaMismatch) {
					return decisions, err
				}
				md.Err = err
			} else {
				md.BetID = &betID
			}
		}

		decisions = append(decisions, md)
	}

	return decisions, nil
}

// AnalyzeBatch analyzes every fixture starting in [from, to). A fixture's
// failure is logged and recorded; it never aborts the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, from, to time.Time, mode Mode) ([]FixtureAnalysis, error) {
	fixtures, err := a.fixtures.GetFixtures(ctx, from, to)
	if err != nil {
		return nil, err
	}

	results := make([]FixtureAnalysis, 0, len(fixtures))
	for _, fixture := range fixtures {
		decisions, err := a.AnalyzeFixture(ctx, fixture.FixtureID, mode)
		if err != nil && a.logger != nil {
			a.logger.WithFields(logrus.Fields{
				"fixture_id": fixture.FixtureID,
				"league":     fixture.LeagueName,
				"error":      err.Error(),
			}).Warn("Fixture analysis failed, continuing batch")
		}
		results = append(results, FixtureAnalysis{Fixture: fixture, Decisions: decisions, Err: err})
	}

	return results, nil
}

func (a *Analyzer) resolveIdentities(fixture *models.Fixture) (league, home, away string, err error) {
	league, ok := a.table.NormalizeLeague(fixture.LeagueName)
	if !ok {
		return "", "", "", fmt.Errorf("league %q: %w", fixture.LeagueName, models.ErrUnresolvedName)
	}
	home, ok = a.table.NormalizeTeam(fixture.HomeTeam, league)
	if !ok {
		return "", "", "", fmt.Errorf("team %q: %w", fixture.HomeTeam, models.ErrUnresolvedName)
	}
	away, ok = a.table.NormalizeTeam(fixture.AwayTeam, league)
	if !ok {
		return "", "", "", fmt.Errorf("team %q: %w", fixture.AwayTeam, models.ErrUnresolvedName)
	}
	return league, home, away, nil
}

func (a *Analyzer) filterMarkets(markets []models.Market) []models.Market {
	if a.statisticType == "" {
		return markets
	}
	var out []models.Market
	for _, m := range markets {
		if m.StatisticType == a.statisticType {
			out = append(out, m)
		}
	}
	return out
}

// lookupCompositions finds pick data for the classifier via the closest
// historical record that carries it. Any failure degrades to empirical-only.
func (a *Analyzer) lookupCompositions(ctx context.Context, fixture *models.Fixture, records []models.HistoricalRecord, mode Mode) (*models.Composition, *models.Composition) {
	if mode == ModeEmpirical || a.predictor == nil {
		return nil, nil
	}

	// Prefer a record carrying pick data inline; archives that store
	// compositions separately match plainly and resolve them by id below.
	match, err := a.matcher.Match(fixture, records, matcher.Options{RequireComposition: true})
	if err != nil {
		match, err = a.matcher.Match(fixture, records, matcher.Options{})
	}
	if err != nil {
		metrics.HistoricalMatchesTotal.WithLabelValues("rejected").Inc()
		return nil, nil
	}
	metrics.HistoricalMatchesTotal.WithLabelValues("accepted").Inc()

	compA, compB := match.Record.CompositionA, match.Record.CompositionB
	if compA == nil || compB == nil {
		compA, compB, err = a.archive.Composition(ctx, match.Record.MatchID)
		if err != nil {
			if a.logger != nil {
				a.logger.WithField("match_id", match.Record.MatchID).
					WithError(err).Debug("Composition lookup failed")
			}
			return nil, nil
		}
	}
	return compA, compB
}

// verdictFor obtains the classifier verdict for one line, or nil when the
// classifier is unavailable, lacks compositions, or abstains. Callers treat
// all three identically.
func (a *Analyzer) verdictFor(league string, compA, compB *models.Composition, line float64, mode Mode) *classifier.Verdict {
	if mode == ModeEmpirical || a.predictor == nil || compA == nil || compB == nil {
		if mode != ModeEmpirical {
			metrics.ClassifierAbstentionsTotal.Inc()
		}
		return nil
	}

	verdict, err := a.predictor.PredictLine(league, compA, compB, line)
	if err != nil {
		metrics.ClassifierAbstentionsTotal.Inc()
		if a.logger != nil && !errors.Is(err, models.ErrClassifierUnavailable) {
			a.logger.WithError(err).Warn("Classifier prediction failed")
		}
		return nil
	}
	return verdict
}

func (a *Analyzer) persistBet(ctx context.Context, fixture *models.Fixture, market *models.Market, decision *Decision, empiricalProb float64, sample *empirical.SampleStats) (uuid.UUID, error) {
	bet := &models.Bet{
		ID:                   uuid.New(),
		FixtureID:            fixture.FixtureID,
		LeagueName:           fixture.LeagueName,
		HomeTeam:             fixture.HomeTeam,
		AwayTeam:             fixture.AwayTeam,
		GameDate:             fixture.StartTime,
		StatisticType:        market.StatisticType,
		MapNumber:            market.MapNumber,
		LineValue:            market.LineValue,
		Side:                 market.Side,
		Price:                market.Price,
		Method:               decision.Method,
		EmpiricalProbability: empiricalProb,
		ImpliedProbability:   market.ImpliedProbability(),
		ExpectedValue:        decision.ExpectedValue,
		Edge:                 decision.Edge,
		HistoricalMean:       sample.Mean,
		HistoricalStd:        sample.Std,
		HistoricalGames:      sample.Games,
		Status:               models.BetStatusPending,
	}

	id, err := a.bets.Upsert(ctx, bet)
	if err != nil {
		return uuid.Nil, err
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"bet_id":     id,
			"fixture_id": fixture.FixtureID,
			"side":       market.Side,
			"line":       market.LineValue,
			"price":      market.Price,
			"ev":         decision.ExpectedValue,
			"method":     decision.Method,
		}).Info("Value bet recorded")
	}

	return id, nil
}

func meanAligned(side models.MarketSide, line, mean float64) bool {
	if side == models.SideOver {
		return mean > line
	}
	return mean < line
}
