package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LimitExceededEvent struct {
	TransactionID  string          `json:"transactionId"`
	AccountClient  string          `json:"accountClient"`
	Category       ExpenseCategory `json:"category"`
	Currency       Currency        `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	OccurredAt     time.Time       `json:"occurredAt"`
	LimitID        string          `json:"limitId"`
	LimitAmount    decimal.Decimal `json:"limitAmount"`
	LimitCurrency  Currency        `json:"limitCurrency"`
	ConvertedTotal decimal.Decimal `json:"convertedTotal"`
}
