package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

type LimitRepository interface {
	// FindLatest returns the limit with the greatest LimitDateTime inside the
	// calendar month starting at month, or domain.ErrRecordNotFound.
	FindLatest(ctx context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (domain.Limit, error)
	Create(ctx context.Context, limit domain.Limit) (domain.Limit, error)
	// CreateIfAbsent inserts limit unless a row with the same account,
	// category and LimitDateTime already exists. created reports which case applied.
	CreateIfAbsent(ctx context.Context, limit domain.Limit) (created bool, err error)
	ListByAccount(ctx context.Context, accountClient string) ([]domain.Limit, error)
}
