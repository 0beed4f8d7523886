package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"golang.org/x/sync/singleflight"
)

var _ service_interfaces.LimitService = (*LimitService)(nil)

type LimitService struct {
	limitRepo repo_interfaces.LimitRepository
	defaults  domain.LimitDefaults
	clock     Clock

	creates singleflight.Group
}

func NewLimitService(limitRepo repo_interfaces.LimitRepository, defaults domain.LimitDefaults, clock Clock) *LimitService {
	return &LimitService{
		limitRepo: limitRepo,
		defaults:  defaults,
		clock:     clock,
	}
}

func (s *LimitService) GetOrCreateDefault(ctx context.Context, accountClient string, category domain.ExpenseCategory) (domain.Limit, error) {
	return s.ResolveLimit(ctx, accountClient, category, s.clock.now())
}

// ResolveLimit returns the active limit of the month containing at, creating
// the default one when the month has none. Concurrent callers for the same
// key share one lookup; the store's unique key arbitrates across processes.
func (s *LimitService) ResolveLimit(ctx context.Context, accountClient string, category domain.ExpenseCategory, at time.Time) (domain.Limit, error) {
	month := s.clock.monthOf(at)
	key := accountClient + "|" + category.String() + "|" + month.Format(time.DateOnly)

	return shareFlight(ctx, &s.creates, key, func(ctx context.Context) (domain.Limit, error) {
		return s.findOrCreate(ctx, accountClient, category, month)
	})
}

func (s *LimitService) findOrCreate(ctx context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (domain.Limit, error) {
	limit, err := s.limitRepo.FindLatest(ctx, accountClient, category, month)
	if err == nil {
		return limit, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.Limit{}, fmt.Errorf("find limit: %w", err)
	}

	created, err := s.limitRepo.CreateIfAbsent(ctx, domain.Limit{
		AccountClient: accountClient,
		Category:      category,
		Amount:        s.defaults.Amount,
		Currency:      s.defaults.Currency,
		LimitDateTime: month,
		Month:         month,
	})
	if err != nil {
		return domain.Limit{}, fmt.Errorf("create default limit: %w", err)
	}

	// Re-read so every caller observes the same row, whoever inserted it.
	limit, err = s.limitRepo.FindLatest(ctx, accountClient, category, month)
	if err != nil {
		return domain.Limit{}, fmt.Errorf("read default limit: %w", err)
	}

	if created {
		logger.Info("limit service default limit created", logger.Fields{
			"accountClient": accountClient,
			"category":      category,
			"month":         month.Format(time.DateOnly),
			"amount":        limit.Amount.String(),
			"currency":      limit.Currency,
		})
	}

	return limit, nil
}

// SetLimit stores a client-chosen limit. It becomes the active limit of the
// current month because it is the newest one.
func (s *LimitService) SetLimit(ctx context.Context, accountClient string, category domain.ExpenseCategory, amount domain.Money) (domain.Limit, error) {
	if !domain.ValidAccount(accountClient) {
		return domain.Limit{}, domain.ErrInvalidAccount
	}
	if !domain.ValidAmount(amount.Amount) {
		return domain.Limit{}, domain.ErrInvalidAmount
	}
	if !amount.Currency.IsSupported() {
		return domain.Limit{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, amount.Currency)
	}

	now := s.clock.now()
	limit, err := s.limitRepo.Create(ctx, domain.Limit{
		AccountClient: accountClient,
		Category:      category,
		Amount:        amount.Amount,
		Currency:      amount.Currency,
		LimitDateTime: now,
		Month:         s.clock.monthOf(now),
	})
	if err != nil {
		return domain.Limit{}, fmt.Errorf("create limit: %w", err)
	}

	logger.Info("limit service limit set", logger.Fields{
		"accountClient": accountClient,
		"category":      category,
		"amount":        limit.Amount.String(),
		"currency":      limit.Currency,
	})
	return limit, nil
}
