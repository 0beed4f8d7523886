package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.LimitEvaluator = (*LimitEvaluator)(nil)

// RateSource is the part of RateService the evaluator needs.
type RateSource interface {
	CurrentSnapshot(ctx context.Context) (domain.RateSnapshot, error)
}

type LimitResolver interface {
	ResolveLimit(ctx context.Context, accountClient string, category domain.ExpenseCategory, at time.Time) (domain.Limit, error)
}

type LimitEvaluator struct {
	aggregator service_interfaces.SpendingAggregator
	limits     LimitResolver
	rates      RateSource
	clock      Clock
}

func NewLimitEvaluator(
	aggregator service_interfaces.SpendingAggregator,
	limits LimitResolver,
	rates RateSource,
	clock Clock,
) *LimitEvaluator {
	return &LimitEvaluator{
		aggregator: aggregator,
		limits:     limits,
		rates:      rates,
		clock:      clock,
	}
}

// Evaluate reports whether the current month's spend plus amount exceeds the
// limit. An unsupported currency is logged and reported as not exceeded.
func (e *LimitEvaluator) Evaluate(ctx context.Context, accountClient string, category domain.ExpenseCategory, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	evaluation, err := e.Assess(ctx, accountClient, category, domain.Money{Amount: amount, Currency: currency}, e.clock.now())
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedCurrency) {
			logger.Warn("limit evaluator unsupported currency", logger.Fields{
				"accountClient": accountClient,
				"category":      category,
				"currency":      currency,
			})
			return false, nil
		}
		return false, err
	}

	return evaluation.Exceeded, nil
}

// Assess evaluates pending against the limit of the month containing at.
// Spend in a currency without a usable rate is left out of the total and
// listed in Skipped.
func (e *LimitEvaluator) Assess(ctx context.Context, accountClient string, category domain.ExpenseCategory, pending domain.Money, at time.Time) (domain.Evaluation, error) {
	if !pending.Currency.IsSupported() {
		return domain.Evaluation{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, pending.Currency)
	}

	month := e.clock.monthOf(at)
	spent, err := e.aggregator.SumByCurrency(ctx, accountClient, category, month)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("aggregate spend: %w", err)
	}
	spent[pending.Currency] = spent[pending.Currency].Add(pending.Amount)

	limit, err := e.limits.ResolveLimit(ctx, accountClient, category, at)
	if err != nil {
		logger.Error("limit evaluator resolve limit failed", err, logger.Fields{
			"accountClient": accountClient,
			"category":      category,
		})
		return domain.Evaluation{}, fmt.Errorf("resolve limit: %w", err)
	}

	evaluation := domain.Evaluation{
		Month:   month,
		Pending: pending,
		Spent:   spent,
		Limit:   limit,
	}

	var snapshot domain.RateSnapshot
	if needsConversion(spent, limit.Currency) {
		snapshot, err = e.rates.CurrentSnapshot(ctx)
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("load rates: %w", err)
		}
	}

	total := decimal.Zero
	for _, currency := range domain.SupportedCurrencies {
		amount := spent[currency]
		if amount.IsZero() {
			continue
		}

		converted, ok := snapshot.Convert(amount, currency, limit.Currency)
		if !ok {
			evaluation.Skipped = append(evaluation.Skipped, currency)
			continue
		}
		total = total.Add(converted)
	}

	evaluation.ConvertedTotal = total
	evaluation.Exceeded = total.GreaterThan(limit.Amount)

	if len(evaluation.Skipped) > 0 {
		logger.Warn("limit evaluator skipped currencies without rate", logger.Fields{
			"accountClient": accountClient,
			"category":      category,
			"limitCurrency": limit.Currency,
			"skipped":       evaluation.Skipped,
		})
	}

	logger.Debug("limit evaluator assessment", logger.Fields{
		"accountClient":  accountClient,
		"category":       category,
		"limitId":        limit.ID,
		"limitAmount":    limit.Amount.String(),
		"limitCurrency":  limit.Currency,
		"convertedTotal": total.String(),
		"exceeded":       evaluation.Exceeded,
	})

	return evaluation, nil
}

func needsConversion(spent map[domain.Currency]decimal.Decimal, target domain.Currency) bool {
	for currency, amount := range spent {
		if currency != target && !amount.IsZero() {
			return true
		}
	}
	return false
}
