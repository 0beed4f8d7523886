package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                  string
	AccountClient       string
	AccountCounterparty string
	Currency            Currency
	Amount              decimal.Decimal
	Category            ExpenseCategory
	OccurredAt          time.Time
	LimitExceeded       bool
	LimitID             string
	CreatedAt           time.Time
}

// ExceededTransaction is a transaction joined with the limit it was checked against.
type ExceededTransaction struct {
	Transaction Transaction
	Limit       Limit
}
