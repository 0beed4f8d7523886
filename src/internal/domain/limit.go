package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Limit struct {
	ID            string
	AccountClient string
	Category      ExpenseCategory
	Amount        decimal.Decimal
	Currency      Currency
	LimitDateTime time.Time
	Month         time.Time
	CreatedAt     time.Time
}

// LimitDefaults is the value materialised when a month has no limit yet.
type LimitDefaults struct {
	Amount   decimal.Decimal
	Currency Currency
}

// MonthStart returns the first day of t's month at 00:00 in t's location.
func MonthStart(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

// SameMonth reports whether a and b fall into the same calendar month, compared in a's location.
func SameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
