package services

import (
	"context"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
)

type RateRefreshFunc func(ctx context.Context) (domain.RateSnapshot, error)

// RateRefresher pulls rates once at start and then on every tick until ctx
// is done. Failures are logged and retried on the next tick.
type RateRefresher struct {
	refresh  RateRefreshFunc
	interval time.Duration
}

func NewRateRefresher(refresh RateRefreshFunc, interval time.Duration) *RateRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RateRefresher{refresh: refresh, interval: interval}
}

func (r *RateRefresher) Run(ctx context.Context) error {
	logger.Info("rate refresher started", logger.Fields{
		"interval": r.interval.String(),
	})

	r.refreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate refresher stopped", nil)
			return nil
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *RateRefresher) refreshOnce(ctx context.Context) {
	if _, err := r.refresh(ctx); err != nil && ctx.Err() == nil {
		logger.Error("rate refresher refresh failed", err, nil)
	}
}
