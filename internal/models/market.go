package models

// MarketSide represents the direction of an over/under market
type MarketSide string

const (
	SideOver  MarketSide = "over"
	SideUnder MarketSide = "under"
)

// Opposite returns the other side of the market
func (s MarketSide) Opposite() MarketSide {
	if s == SideOver {
		return SideUnder
	}
	return SideOver
}

// Market represents one priced over/under line for a fixture.
// MapNumber is nil for whole-match markets.
type Market struct {
	FixtureID     int64      `db:"fixture_id" json:"fixture_id" validate:"required"`
	StatisticType string     `db:"statistic_type" json:"statistic_type" validate:"required"`
	MapNumber     *int       `db:"map_number" json:"map_number"`
	LineValue     float64    `db:"line_value" json:"line_value" validate:"required"`
	Side          MarketSide `db:"side" json:"side" validate:"required,oneof=over under"`
	Price         float64    `db:"price" json:"price" validate:"required,gt=1"`
	IsAlternate   bool       `db:"is_alternate" json:"is_alternate"`
}

// ImpliedProbability returns the probability implied by the decimal price
func (m *Market) ImpliedProbability() float64 {
	if m.Price <= 0 {
		return 0
	}
	return 1.0 / m.Price
}
