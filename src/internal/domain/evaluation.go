package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evaluation is the detailed result of checking a pending amount against
// the month's limit. Spent already includes the pending amount.
type Evaluation struct {
	Month          time.Time
	Pending        Money
	Spent          map[Currency]decimal.Decimal
	Limit          Limit
	ConvertedTotal decimal.Decimal
	// Skipped lists currencies with spend that could not be converted for lack of a rate.
	Skipped  []Currency
	Exceeded bool
}
