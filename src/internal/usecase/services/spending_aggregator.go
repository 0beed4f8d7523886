package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var _ service_interfaces.SpendingAggregator = (*SpendingAggregator)(nil)

type SpendingAggregator struct {
	transactionRepo repo_interfaces.TransactionRepository
}

func NewSpendingAggregator(transactionRepo repo_interfaces.TransactionRepository) *SpendingAggregator {
	return &SpendingAggregator{transactionRepo: transactionRepo}
}

// SumByCurrency returns one entry per supported currency, zero when the
// month has no spend in it.
func (a *SpendingAggregator) SumByCurrency(ctx context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (map[domain.Currency]decimal.Decimal, error) {
	var mu sync.Mutex
	sums := make(map[domain.Currency]decimal.Decimal, len(domain.SupportedCurrencies))

	g, gctx := errgroup.WithContext(ctx)
	for _, currency := range domain.SupportedCurrencies {
		g.Go(func() error {
			sum, err := a.transactionRepo.SumAmount(gctx, accountClient, category, currency, month)
			if err != nil {
				return fmt.Errorf("sum %s spend: %w", currency, err)
			}

			mu.Lock()
			sums[currency] = sum
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sums, nil
}
