package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	// SumAmount totals the transactions whose OccurredAt falls in the calendar
	// month starting at month. It returns zero when nothing matches.
	SumAmount(ctx context.Context, accountClient string, category domain.ExpenseCategory, currency domain.Currency, month time.Time) (decimal.Decimal, error)
	ListExceeded(ctx context.Context, accountClient string) ([]domain.ExceededTransaction, error)
}
