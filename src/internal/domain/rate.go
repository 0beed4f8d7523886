package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot holds, for each currency, the value of one unit expressed in
// the reference currency. The reference currency itself is always 1.
type RateSnapshot struct {
	RequestDate time.Time
	Reference   Currency
	Rates       map[Currency]decimal.Decimal
	FetchedAt   time.Time
}

func (s RateSnapshot) Rate(currency Currency) (decimal.Decimal, bool) {
	if currency == s.Reference {
		return decimal.NewFromInt(1), true
	}

	rate, ok := s.Rates[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Decimal{}, false
	}

	return rate, true
}

// Convert moves amount from one currency to another through the reference
// currency. ok is false when either side has no usable rate.
func (s RateSnapshot) Convert(amount decimal.Decimal, from Currency, to Currency) (decimal.Decimal, bool) {
	if from == to {
		return amount, true
	}

	fromRate, ok := s.Rate(from)
	if !ok {
		return decimal.Decimal{}, false
	}
	toRate, ok := s.Rate(to)
	if !ok {
		return decimal.Decimal{}, false
	}

	return amount.Mul(fromRate).Div(toRate), true
}
