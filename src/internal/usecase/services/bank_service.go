package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
)

// Verify that BankService implements the service_interfaces.BankService interface
var _ service_interfaces.BankService = (*BankService)(nil)

type BankService struct {
	transactionRepo repo_interfaces.TransactionRepository
	evaluator       service_interfaces.LimitEvaluator
	alerts          service_interfaces.AlertPublisher
	clock           Clock
	locks           *keyedLock
}

func NewBankService(
	transactionRepo repo_interfaces.TransactionRepository,
	evaluator service_interfaces.LimitEvaluator,
	alerts service_interfaces.AlertPublisher,
	clock Clock,
) *BankService {
	return &BankService{
		transactionRepo: transactionRepo,
		evaluator:       evaluator,
		alerts:          alerts,
		clock:           clock,
		locks:           newKeyedLock(),
	}
}

// Record validates transaction, evaluates it against its month's limit and
// persists it linked to that limit. Invalid input yields a Rejected outcome
// and writes nothing. Evaluation and persistence for one account and
// category are serialised within this process only.
func (s *BankService) Record(ctx context.Context, transaction domain.Transaction) (domain.RecordOutcome, error) {
	counterparty := strings.TrimSpace(transaction.AccountCounterparty)
	if !domain.ValidAccount(transaction.AccountClient) || (counterparty != "" && !domain.ValidAccount(counterparty)) {
		return s.reject(transaction, domain.RejectionInvalidAccount), nil
	}
	category, err := domain.ParseExpenseCategory(string(transaction.Category))
	if err != nil {
		return s.reject(transaction, domain.RejectionInvalidCategory), nil
	}
	currency, err := domain.ParseCurrency(string(transaction.Currency))
	if err != nil {
		return s.reject(transaction, domain.RejectionUnsupportedCurrency), nil
	}
	if !domain.ValidAmount(transaction.Amount) {
		return s.reject(transaction, domain.RejectionInvalidAmount), nil
	}
	if !transaction.OccurredAt.Before(s.clock.now()) {
		return s.reject(transaction, domain.RejectionFutureDated), nil
	}

	transaction.Category = category
	transaction.Currency = currency
	transaction.AccountClient = strings.TrimSpace(transaction.AccountClient)
	transaction.AccountCounterparty = strings.TrimSpace(transaction.AccountCounterparty)

	unlock := s.locks.lock(transaction.AccountClient + "|" + category.String())
	defer unlock()

	// Evaluated against the month of OccurredAt, not the current month as the
	// earlier service did, so a back-dated transaction counts against the
	// limit it is stored under.
	evaluation, err := s.evaluator.Assess(
		ctx,
		transaction.AccountClient,
		category,
		domain.Money{Amount: transaction.Amount, Currency: currency},
		transaction.OccurredAt,
	)
	if err != nil {
		logger.Error("bank service evaluate transaction failed", err, logger.Fields{
			"accountClient": transaction.AccountClient,
			"category":      category,
		})
		return domain.RecordOutcome{}, err
	}

	// The evaluation already resolved the limit through the same
	// get-or-create path, so it is linked directly.
	transaction.LimitExceeded = evaluation.Exceeded
	transaction.LimitID = evaluation.Limit.ID

	created, err := s.transactionRepo.Create(ctx, transaction)
	if err != nil {
		logger.Error("bank service persist transaction failed", err, logger.Fields{
			"accountClient": transaction.AccountClient,
			"category":      category,
			"limitId":       transaction.LimitID,
		})
		return domain.RecordOutcome{}, err
	}

	logger.Info("bank service transaction recorded", logger.Fields{
		"transactionId":  created.ID,
		"accountClient":  created.AccountClient,
		"category":       created.Category,
		"limitId":        created.LimitID,
		"limitExceeded":  created.LimitExceeded,
		"convertedTotal": evaluation.ConvertedTotal.String(),
	})

	if created.LimitExceeded {
		s.publishExceeded(ctx, created, evaluation)
	}

	return domain.Recorded(created), nil
}

func (s *BankService) RecordTransaction(ctx context.Context, req models.BankTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("bank service record transaction request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("bank service record transaction validation failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	outcome, err := s.Record(ctx, domain.Transaction{
		AccountClient:       req.AccountFrom,
		AccountCounterparty: req.AccountTo,
		Currency:            domain.Currency(req.CurrencyShortname),
		Amount:              req.Sum,
		Category:            domain.ExpenseCategory(req.ExpenseCategory),
		OccurredAt:          req.Datetime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			return commons.ErrorResponse[models.TransactionResponse]("Rates not found", "Exchange rates are not available yet"), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to record transaction", "Unable to record transaction right now"), err
	}

	if !outcome.IsRecorded() {
		return commons.ErrorResponse[models.TransactionResponse]("transaction rejected", string(outcome.Reason), outcome.Reason.Err().Error()), nil
	}

	return commons.SuccessResponse("transaction recorded successfully", s.mapTransactionToResponse(outcome.Transaction)), nil
}

func (s *BankService) reject(transaction domain.Transaction, reason domain.RejectionReason) domain.RecordOutcome {
	logger.Warn("bank service transaction rejected", logger.Fields{
		"accountClient": transaction.AccountClient,
		"category":      transaction.Category,
		"currency":      transaction.Currency,
		"occurredAt":    transaction.OccurredAt,
		"reason":        reason,
	})
	return domain.Rejected(reason)
}

func (s *BankService) publishExceeded(ctx context.Context, transaction domain.Transaction, evaluation domain.Evaluation) {
	if s.alerts == nil {
		return
	}

	event := domain.LimitExceededEvent{
		TransactionID:  transaction.ID,
		AccountClient:  transaction.AccountClient,
		Category:       transaction.Category,
		Currency:       transaction.Currency,
		Amount:         transaction.Amount,
		OccurredAt:     transaction.OccurredAt,
		LimitID:        evaluation.Limit.ID,
		LimitAmount:    evaluation.Limit.Amount,
		LimitCurrency:  evaluation.Limit.Currency,
		ConvertedTotal: evaluation.ConvertedTotal,
	}
	if err := s.alerts.PublishLimitExceeded(ctx, event); err != nil {
		logger.Error("bank service publish limit exceeded failed", err, logger.Fields{
			"transactionId": transaction.ID,
		})
	}
}

func (s *BankService) mapTransactionToResponse(transaction domain.Transaction) models.TransactionResponse {
	return models.TransactionResponse{
		ID:                transaction.ID,
		AccountFrom:       transaction.AccountClient,
		AccountTo:         transaction.AccountCounterparty,
		CurrencyShortname: transaction.Currency.String(),
		Sum:               transaction.Amount,
		ExpenseCategory:   transaction.Category.String(),
		Datetime:          transaction.OccurredAt.In(s.clock.location()).Format(time.RFC3339),
		LimitExceeded:     transaction.LimitExceeded,
		LimitID:           transaction.LimitID,
	}
}
