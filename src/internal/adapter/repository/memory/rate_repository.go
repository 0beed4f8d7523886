package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultRateSnapshot mirrors the rates seeded by the postgres migrations.
func DefaultRateSnapshot(requestDate time.Time) domain.RateSnapshot {
	return domain.RateSnapshot{
		RequestDate: requestDate,
		Reference:   domain.CurrencyKZT,
		Rates: map[domain.Currency]decimal.Decimal{
			domain.CurrencyUSD: decimal.RequireFromString("470.50"),
			domain.CurrencyEUR: decimal.RequireFromString("510.20"),
			domain.CurrencyRUB: decimal.RequireFromString("5.15"),
		},
		FetchedAt: requestDate,
	}
}

type ExchangeRateRepository struct {
	mu        sync.RWMutex
	snapshots []domain.RateSnapshot
}

func NewExchangeRateRepository(seed ...domain.RateSnapshot) *ExchangeRateRepository {
	repo := &ExchangeRateRepository{}
	for _, snapshot := range seed {
		repo.snapshots = append(repo.snapshots, cloneSnapshot(snapshot))
	}
	return repo
}

func (r *ExchangeRateRepository) SaveSnapshot(_ context.Context, snapshot domain.RateSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.snapshots {
		if existing.RequestDate.Equal(snapshot.RequestDate) {
			r.snapshots[i] = cloneSnapshot(snapshot)
			return nil
		}
	}

	r.snapshots = append(r.snapshots, cloneSnapshot(snapshot))
	return nil
}

func (r *ExchangeRateRepository) LatestSnapshot(_ context.Context) (domain.RateSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.snapshots) == 0 {
		return domain.RateSnapshot{}, domain.ErrRecordNotFound
	}

	latest := r.snapshots[0]
	for _, snapshot := range r.snapshots[1:] {
		if snapshot.RequestDate.After(latest.RequestDate) {
			latest = snapshot
		}
	}

	return cloneSnapshot(latest), nil
}

func cloneSnapshot(snapshot domain.RateSnapshot) domain.RateSnapshot {
	snapshot.Rates = maps.Clone(snapshot.Rates)
	return snapshot
}
