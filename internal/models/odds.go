package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseOdds converts a provider odds string to a decimal price. Accepts
// decimal format ("1.90") and fractional format ("9/10"). The price must
// exceed 1.0: a bet at or below even money against the stake has no payout.
func ParseOdds(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty odds string")
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil {
			return 0, fmt.Errorf("invalid fractional odds %q: %w", raw, err)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || d.IsZero() {
			return 0, fmt.Errorf("invalid fractional odds %q", raw)
		}
		price := n.Div(d).Add(decimal.NewFromInt(1))
		return validPrice(price, raw)
	}

	price, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid odds %q: %w", raw, err)
	}
	return validPrice(price, raw)
}

func validPrice(price decimal.Decimal, raw string) (float64, error) {
	if !price.GreaterThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("odds %q do not exceed 1.0", raw)
	}
	// Providers quote at most three decimal places; anything beyond is noise
	f, _ := price.Round(3).Float64()
	return f, nil
}
