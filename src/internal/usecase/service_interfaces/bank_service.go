package service_interfaces

import (
	"context"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
)

type BankService interface {
	Record(ctx context.Context, transaction domain.Transaction) (domain.RecordOutcome, error)
	RecordTransaction(ctx context.Context, req models.BankTransactionRequest) (commons.Response[models.TransactionResponse], error)
}

type AlertPublisher interface {
	PublishLimitExceeded(ctx context.Context, event domain.LimitExceededEvent) error
}
