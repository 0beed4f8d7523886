package service_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

type LimitService interface {
	// GetOrCreateDefault resolves the active limit for the current month.
	GetOrCreateDefault(ctx context.Context, accountClient string, category domain.ExpenseCategory) (domain.Limit, error)
	// ResolveLimit resolves the active limit for the month containing at.
	ResolveLimit(ctx context.Context, accountClient string, category domain.ExpenseCategory, at time.Time) (domain.Limit, error)
	SetLimit(ctx context.Context, accountClient string, category domain.ExpenseCategory, amount domain.Money) (domain.Limit, error)
}
