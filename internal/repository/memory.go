package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/riftline/internal/models"
)

// MemoryArchive is an in-memory Archive backed by a slice. Used in tests and
// for running the engine against a CSV/JSON snapshot without a database.
type MemoryArchive struct {
	mu           sync.RWMutex
	records      []models.HistoricalRecord
	compositions map[string][2]*models.Composition
	nextSeq      int64
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		compositions: make(map[string][2]*models.Composition),
	}
}

// Add appends a record, assigning the next insertion sequence number
func (a *MemoryArchive) Add(rec models.HistoricalRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextSeq++
	rec.Seq = a.nextSeq
	if rec.HasComposition() {
		a.compositions[rec.MatchID] = [2]*models.Composition{rec.CompositionA, rec.CompositionB}
	}
	a.records = append(a.records, rec)
}

// Query returns the league's records in insertion order
func (a *MemoryArchive) Query(_ context.Context, league string) ([]models.HistoricalRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []models.HistoricalRecord
	for _, rec := range a.records {
		if rec.League == league {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Composition returns stored pick data for a match, nils when absent
func (a *MemoryArchive) Composition(_ context.Context, matchID string) (*models.Composition, *models.Composition, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	comps, ok := a.compositions[matchID]
	if !ok {
		return nil, nil, nil
	}
	return comps[0], comps[1], nil
}

// MemoryBetRepository is an in-memory BetRepository for tests. It enforces
// the same uniqueness semantics as the PostgreSQL implementation.
type MemoryBetRepository struct {
	mu   sync.Mutex
	bets map[uuid.UUID]*models.Bet
}

// NewMemoryBetRepository creates an empty in-memory bet repository
func NewMemoryBetRepository() *MemoryBetRepository {
	return &MemoryBetRepository{bets: make(map[uuid.UUID]*models.Bet)}
}

func betKey(b *models.Bet) string {
	mapNum := -1
	if b.MapNumber != nil {
		mapNum = *b.MapNumber
	}
	return fmt.Sprintf("%d|%s|%d|%g|%s|%s",
		b.FixtureID, b.StatisticType, mapNum, b.LineValue, b.Side, b.Method)
}

// Upsert inserts the bet or returns the existing id for an identical payload
func (r *MemoryBetRepository) Upsert(_ context.Context, bet *models.Bet) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := betKey(bet)
	for id, existing := range r.bets {
		if betKey(existing) != key {
			continue
		}
		if !existing.SamePayload(bet) {
			return uuid.Nil, fmt.Errorf("bet %s: %w", id, models.ErrSchemaMismatch)
		}
		return id, nil
	}

	stored := *bet
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.bets[stored.ID] = &stored
	return stored.ID, nil
}

// GetByID retrieves a bet by ID
func (r *MemoryBetRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bet, ok := r.bets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *bet
	return &copied, nil
}

// GetAwaitingResult returns unresolved bets ordered by game date
func (r *MemoryBetRepository) GetAwaitingResult(_ context.Context) ([]*models.Bet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Bet
	for _, bet := range r.bets {
		if !bet.IsResolved() {
			copied := *bet
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameDate.Before(out[j].GameDate) })
	return out, nil
}

// UpdateResult records a settlement outcome
func (r *MemoryBetRepository) UpdateResult(_ context.Context, id uuid.UUID, status models.BetStatus, resultValue *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bet, ok := r.bets[id]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now().UTC()
	bet.Status = status
	bet.ResultValue = resultValue
	bet.ResultDate = &now
	bet.UpdatedAt = now
	return nil
}

// Stats aggregates the in-memory bet book
func (r *MemoryBetRepository) Stats(_ context.Context) (*BetStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &BetStats{
		ByStatus: make(map[models.BetStatus]int),
		ByMethod: make(map[models.Method]int),
	}

	evSum := 0.0
	winOddsSum := 0.0
	for _, bet := range r.bets {
		stats.Total++
		stats.ByStatus[bet.Status]++
		stats.ByMethod[bet.Method]++
		stats.UnitProfit += bet.ProfitLoss()
		evSum += bet.ExpectedValue
		if bet.IsResolved() {
			stats.Resolved++
		}
		switch bet.Status {
		case models.BetStatusWon:
			stats.Wins++
			winOddsSum += bet.Price
		case models.BetStatusLost:
			stats.Losses++
		}
	}

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
