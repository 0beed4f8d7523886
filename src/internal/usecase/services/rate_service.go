package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

var errNoRateSupplier = errors.New("no rate supplier configured")

// RateService serves the latest persisted snapshot through an in-memory TTL
// cache. A stale cached snapshot is still served when the store fails.
type RateService struct {
	rateRepo repo_interfaces.ExchangeRateRepository
	supplier service_interfaces.RateSupplier
	ttl      time.Duration
	clock    Clock

	mu        sync.RWMutex
	cached    domain.RateSnapshot
	expiresAt time.Time
	hasCached bool

	loads singleflight.Group
}

func NewRateService(
	rateRepo repo_interfaces.ExchangeRateRepository,
	supplier service_interfaces.RateSupplier,
	ttl time.Duration,
	clock Clock,
) *RateService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RateService{
		rateRepo: rateRepo,
		supplier: supplier,
		ttl:      ttl,
		clock:    clock,
	}
}

func (s *RateService) CurrentSnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	now := s.clock.now()

	s.mu.RLock()
	cached, hasCached, fresh := s.cached, s.hasCached, now.Before(s.expiresAt)
	s.mu.RUnlock()
	if hasCached && fresh {
		return cached, nil
	}

	snapshot, err := shareFlight(ctx, &s.loads, "latest", func(ctx context.Context) (domain.RateSnapshot, error) {
		snapshot, err := s.rateRepo.LatestSnapshot(ctx)
		if err != nil {
			return domain.RateSnapshot{}, err
		}
		s.store(snapshot)
		return snapshot, nil
	})
	if err != nil {
		if hasCached {
			logger.Warn("rate service serving stale snapshot", logger.Fields{
				"requestDate": cached.RequestDate,
				"error":       err.Error(),
			})
			return cached, nil
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.RateSnapshot{}, domain.ErrRateUnavailable
		}
		logger.Error("rate service load snapshot failed", err, nil)
		return domain.RateSnapshot{}, fmt.Errorf("load rate snapshot: %w", err)
	}

	return snapshot, nil
}

// RefreshRates pulls a snapshot from the supplier, persists it and replaces
// the cached one.
func (s *RateService) RefreshRates(ctx context.Context) (domain.RateSnapshot, error) {
	if s.supplier == nil {
		return domain.RateSnapshot{}, errNoRateSupplier
	}

	snapshot, err := s.supplier.LatestRates(ctx)
	if err != nil {
		logger.Error("rate service fetch rates failed", err, nil)
		return domain.RateSnapshot{}, fmt.Errorf("fetch rates: %w", err)
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = s.clock.now()
	}

	if err := s.rateRepo.SaveSnapshot(ctx, snapshot); err != nil {
		logger.Error("rate service save rates failed", err, logger.Fields{
			"requestDate": snapshot.RequestDate,
		})
		return domain.RateSnapshot{}, fmt.Errorf("save rates: %w", err)
	}

	s.store(snapshot)

	logger.Info("rate service rates refreshed", logger.Fields{
		"requestDate": snapshot.RequestDate.Format(time.DateOnly),
		"count":       len(snapshot.Rates),
	})
	return snapshot, nil
}

func (s *RateService) GetRates(ctx context.Context) (commons.Response[models.RatesResponse], error) {
	logger.Info("rate service get rates request", nil)

	snapshot, err := s.CurrentSnapshot(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			return commons.ErrorResponse[models.RatesResponse]("Rates not found"), err
		}
		return commons.ErrorResponse[models.RatesResponse]("failed to get rates", "Unable to fetch rates right now"), err
	}

	resp := models.RatesResponse{
		RequestDate: snapshot.RequestDate.Format(time.DateOnly),
		Reference:   snapshot.Reference.String(),
		Rates:       make(map[string]decimal.Decimal, len(snapshot.Rates)),
		FetchedAt:   snapshot.FetchedAt.Format(time.RFC3339),
	}
	for currency, rate := range snapshot.Rates {
		resp.Rates[currency.String()] = rate
	}

	logger.Info("rate service get rates success", logger.Fields{
		"count": len(resp.Rates),
	})

	return commons.SuccessResponse("rates fetched successfully", resp), nil
}

func (s *RateService) store(snapshot domain.RateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = snapshot
	s.hasCached = true
	s.expiresAt = s.clock.now().Add(s.ttl)
}
