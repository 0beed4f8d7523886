package services

import (
	"context"
	"strings"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/models"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/commons"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
)

var _ service_interfaces.ClientService = (*ClientService)(nil)

type ClientService struct {
	limits          service_interfaces.LimitService
	limitRepo       repo_interfaces.LimitRepository
	transactionRepo repo_interfaces.TransactionRepository
	location        *time.Location
}

func NewClientService(
	limits service_interfaces.LimitService,
	limitRepo repo_interfaces.LimitRepository,
	transactionRepo repo_interfaces.TransactionRepository,
	location *time.Location,
) *ClientService {
	if location == nil {
		location = time.Local
	}
	return &ClientService{
		limits:          limits,
		limitRepo:       limitRepo,
		transactionRepo: transactionRepo,
		location:        location,
	}
}

func (s *ClientService) SetLimit(ctx context.Context, req models.SetLimitRequest) (commons.Response[models.LimitResponse], error) {
	logger.Info("client service set limit request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("client service set limit validation failed", err, nil)
		return commons.ErrorResponse[models.LimitResponse]("validation failed", err.Error()), err
	}

	category, _ := domain.ParseExpenseCategory(req.ExpenseCategory)
	currency, _ := domain.ParseCurrency(req.LimitCurrencyShortname)

	limit, err := s.limits.SetLimit(ctx, strings.TrimSpace(req.AccountFrom), category, domain.Money{
		Amount:   req.LimitSum,
		Currency: currency,
	})
	if err != nil {
		logger.Error("client service set limit failed", err, logger.Fields{
			"accountClient": req.AccountFrom,
		})
		return commons.ErrorResponse[models.LimitResponse]("failed to set limit", "Unable to set limit right now"), err
	}

	return commons.SuccessResponse("limit set successfully", s.mapLimitToResponse(limit)), nil
}

func (s *ClientService) GetLimits(ctx context.Context, accountClient string) (commons.Response[[]models.LimitResponse], error) {
	logger.Info("client service get limits request", logger.Fields{
		"accountClient": accountClient,
	})

	limits, err := s.limitRepo.ListByAccount(ctx, strings.TrimSpace(accountClient))
	if err != nil {
		logger.Error("client service get limits failed", err, logger.Fields{
			"accountClient": accountClient,
		})
		return commons.ErrorResponse[[]models.LimitResponse]("failed to get limits", "Unable to fetch limits right now"), err
	}

	resp := make([]models.LimitResponse, 0, len(limits))
	for _, limit := range limits {
		resp = append(resp, s.mapLimitToResponse(limit))
	}

	logger.Info("client service get limits success", logger.Fields{
		"accountClient": accountClient,
		"count":         len(resp),
	})

	return commons.SuccessResponse("limits fetched successfully", resp), nil
}

func (s *ClientService) GetExceededTransactions(ctx context.Context, accountClient string) (commons.Response[[]models.ExceededTransactionResponse], error) {
	logger.Info("client service get exceeded transactions request", logger.Fields{
		"accountClient": accountClient,
	})

	exceeded, err := s.transactionRepo.ListExceeded(ctx, strings.TrimSpace(accountClient))
	if err != nil {
		logger.Error("client service get exceeded transactions failed", err, logger.Fields{
			"accountClient": accountClient,
		})
		return commons.ErrorResponse[[]models.ExceededTransactionResponse]("failed to get transactions", "Unable to fetch transactions right now"), err
	}

	resp := make([]models.ExceededTransactionResponse, 0, len(exceeded))
	for _, item := range exceeded {
		resp = append(resp, models.ExceededTransactionResponse{
			AccountFrom:            item.Transaction.AccountClient,
			AccountTo:              item.Transaction.AccountCounterparty,
			CurrencyShortname:      item.Transaction.Currency.String(),
			Sum:                    item.Transaction.Amount,
			ExpenseCategory:        item.Transaction.Category.String(),
			Datetime:               s.formatTime(item.Transaction.OccurredAt),
			LimitSum:               item.Limit.Amount,
			LimitCurrencyShortname: item.Limit.Currency.String(),
			LimitDatetime:          s.formatTime(item.Limit.LimitDateTime),
		})
	}

	return commons.SuccessResponse("transactions fetched successfully", resp), nil
}

func (s *ClientService) mapLimitToResponse(limit domain.Limit) models.LimitResponse {
	return models.LimitResponse{
		ID:                     limit.ID,
		AccountFrom:            limit.AccountClient,
		LimitSum:               limit.Amount,
		LimitCurrencyShortname: limit.Currency.String(),
		ExpenseCategory:        limit.Category.String(),
		LimitDatetime:          s.formatTime(limit.LimitDateTime),
	}
}

func (s *ClientService) formatTime(t time.Time) string {
	return t.In(s.location).Format(time.RFC3339)
}
