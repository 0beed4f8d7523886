package service_interfaces

import (
	"context"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
)

type ClientService interface {
	SetLimit(ctx context.Context, req models.SetLimitRequest) (commons.Response[models.LimitResponse], error)
	GetLimits(ctx context.Context, accountClient string) (commons.Response[[]models.LimitResponse], error)
	GetExceededTransactions(ctx context.Context, accountClient string) (commons.Response[[]models.ExceededTransactionResponse], error)
}
