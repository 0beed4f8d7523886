package alerts

import (
	"context"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
)

var _ service_interfaces.AlertPublisher = Noop{}

// Noop only logs events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishLimitExceeded(_ context.Context, event domain.LimitExceededEvent) error {
	logger.Debug("limit exceeded event not published: no broker configured", logger.Fields{
		"transactionId": event.TransactionID,
	})
	return nil
}

func (Noop) Close() error { return nil }
