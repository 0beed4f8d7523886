package repo_interfaces

import (
	"context"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

type ExchangeRateRepository interface {
	SaveSnapshot(ctx context.Context, snapshot domain.RateSnapshot) error
	LatestSnapshot(ctx context.Context) (domain.RateSnapshot, error)
}
