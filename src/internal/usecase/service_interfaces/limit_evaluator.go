package service_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type SpendingAggregator interface {
	SumByCurrency(ctx context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (map[domain.Currency]decimal.Decimal, error)
}

type LimitEvaluator interface {
	Evaluate(ctx context.Context, accountClient string, category domain.ExpenseCategory, currency domain.Currency, amount decimal.Decimal) (bool, error)
	Assess(ctx context.Context, accountClient string, category domain.ExpenseCategory, pending domain.Money, at time.Time) (domain.Evaluation, error)
}
