package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/google/uuid"
)

type LimitRepository struct {
	mu     sync.RWMutex
	limits []domain.Limit
}

func NewLimitRepository() *LimitRepository {
	return &LimitRepository{}
}

func (r *LimitRepository) FindLatest(_ context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (domain.Limit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	end := month.AddDate(0, 1, 0)
	var latest domain.Limit
	found := false
	for _, limit := range r.limits {
		if limit.AccountClient != accountClient || limit.Category != category {
			continue
		}
		if limit.Month.Before(month) || !limit.Month.Before(end) {
			continue
		}
		if !found || limit.LimitDateTime.After(latest.LimitDateTime) ||
			(limit.LimitDateTime.Equal(latest.LimitDateTime) && limit.CreatedAt.After(latest.CreatedAt)) {
			latest = limit
			found = true
		}
	}

	if !found {
		return domain.Limit{}, domain.ErrRecordNotFound
	}

	return latest, nil
}

func (r *LimitRepository) Create(_ context.Context, limit domain.Limit) (domain.Limit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(limit), nil
}

func (r *LimitRepository) CreateIfAbsent(_ context.Context, limit domain.Limit) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.limits {
		if existing.AccountClient == limit.AccountClient &&
			existing.Category == limit.Category &&
			existing.LimitDateTime.Equal(limit.LimitDateTime) {
			return false, nil
		}
	}

	r.insertLocked(limit)
	return true, nil
}

func (r *LimitRepository) ListByAccount(_ context.Context, accountClient string) ([]domain.Limit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Limit, 0)
	for _, limit := range r.limits {
		if limit.AccountClient == accountClient {
			out = append(out, limit)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Limit) int {
		return a.LimitDateTime.Compare(b.LimitDateTime)
	})

	return out, nil
}

func (r *LimitRepository) get(id string) (domain.Limit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, limit := range r.limits {
		if limit.ID == id {
			return limit, true
		}
	}

	return domain.Limit{}, false
}

func (r *LimitRepository) insertLocked(limit domain.Limit) domain.Limit {
	if limit.ID == "" {
		limit.ID = uuid.NewString()
	}
	limit.CreatedAt = time.Now().UTC()
	r.limits = append(r.limits, limit)
	return limit
}
