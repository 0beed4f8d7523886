package service_interfaces

import (
	"context"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

// RateSupplier fetches a fresh snapshot from an external source.
type RateSupplier interface {
	LatestRates(ctx context.Context) (domain.RateSnapshot, error)
}

type RateService interface {
	CurrentSnapshot(ctx context.Context) (domain.RateSnapshot, error)
	RefreshRates(ctx context.Context) (domain.RateSnapshot, error)
	GetRates(ctx context.Context) (commons.Response[models.RatesResponse], error)
}
