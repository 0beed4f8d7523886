package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type rateSourceStub struct {
	snapshot domain.RateSnapshot
	err      error
	calls    int
}

func (s *rateSourceStub) CurrentSnapshot(context.Context) (domain.RateSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func TestEvaluateUnsupportedCurrencyIsNotExceeded(t *testing.T) {
	f := newFixture(t)

	rapid.Check(t, func(t *rapid.T) {
		code := rapid.StringMatching(`[A-Za-z]{0,4}`).Draw(t, "currency")
		currency := domain.Currency(code)
		if currency.IsSupported() {
			t.Skip("supported currency")
		}

		exceeded, err := f.evaluator.Evaluate(context.Background(), "0000000001", domain.ExpenseCategoryService, currency, decimal.NewFromInt(1_000_000))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exceeded {
			t.Fatalf("currency %q reported as exceeded", code)
		}
	})
}

func TestEvaluateHighSumExceedsDefaultLimit(t *testing.T) {
	f := newFixture(t)

	exceeded, err := f.evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyUSD, decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.True(t, exceeded)
}

func TestEvaluateLowSumStaysUnderDefaultLimit(t *testing.T) {
	f := newFixture(t)

	evaluation, err := f.evaluator.Assess(context.Background(), "A", domain.ExpenseCategoryService, domain.Money{
		Amount:   decimal.NewFromInt(200),
		Currency: domain.CurrencyUSD,
	}, testNow)
	require.NoError(t, err)
	require.False(t, evaluation.Exceeded)
	require.True(t, evaluation.ConvertedTotal.Equal(decimal.NewFromInt(80)), evaluation.ConvertedTotal.String())
	require.Empty(t, evaluation.Skipped)
}

func TestEvaluateEqualityIsNotExceeded(t *testing.T) {
	f := newFixture(t)

	// 250 USD is exactly 100 EUR at the test rates.
	exceeded, err := f.evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyUSD, decimal.NewFromInt(250))
	require.NoError(t, err)
	require.False(t, exceeded)

	exceeded, err = f.evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyEUR, decimal.RequireFromString("100.01"))
	require.NoError(t, err)
	require.True(t, exceeded)
}

func TestAssessIncludesMonthSpendAcrossCurrencies(t *testing.T) {
	f := newFixture(t)
	// 40 EUR + 30 EUR + 20 EUR this month, plus a large spend in December.
	f.seedTransaction(t, domain.CurrencyKZT, 20000, testNow.Add(-time.Hour))
	f.seedTransaction(t, domain.CurrencyEUR, 30, testNow.Add(-2*time.Hour))
	f.seedTransaction(t, domain.CurrencyUSD, 50, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	f.seedTransaction(t, domain.CurrencyUSD, 100_000, testNow.AddDate(0, -1, 0))

	evaluation, err := f.evaluator.Assess(context.Background(), "0000000001", domain.ExpenseCategoryService, domain.Money{
		Amount:   decimal.NewFromInt(25),
		Currency: domain.CurrencyUSD,
	}, testNow)
	require.NoError(t, err)

	require.True(t, evaluation.Spent[domain.CurrencyUSD].Equal(decimal.NewFromInt(75)))
	require.True(t, evaluation.Spent[domain.CurrencyRUB].IsZero())
	require.True(t, evaluation.ConvertedTotal.Equal(decimal.NewFromInt(100)), evaluation.ConvertedTotal.String())
	require.False(t, evaluation.Exceeded)
}

func TestAssessSkipsCurrencyWithoutRate(t *testing.T) {
	f := newFixture(t)
	f.seedTransaction(t, domain.CurrencyRUB, 1_000_000, testNow.Add(-time.Hour))

	evaluation, err := f.evaluator.Assess(context.Background(), "0000000001", domain.ExpenseCategoryService, domain.Money{
		Amount:   decimal.NewFromInt(10),
		Currency: domain.CurrencyEUR,
	}, testNow)
	require.NoError(t, err)
	require.Equal(t, []domain.Currency{domain.CurrencyRUB}, evaluation.Skipped)
	require.True(t, evaluation.ConvertedTotal.Equal(decimal.NewFromInt(10)))
	require.False(t, evaluation.Exceeded)
}

func TestAssessDoesNotLoadRatesForSameCurrencySpend(t *testing.T) {
	f := newFixture(t)
	rates := &rateSourceStub{err: domain.ErrRateUnavailable}
	evaluator := services.NewLimitEvaluator(services.NewSpendingAggregator(f.txRepo), f.limits, rates, f.clock)

	exceeded, err := evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyEUR, decimal.NewFromInt(101))
	require.NoError(t, err)
	require.True(t, exceeded)
	require.Zero(t, rates.calls)
}

func TestAssessFailsWhenRatesUnavailable(t *testing.T) {
	f := newFixture(t)
	evaluator := services.NewLimitEvaluator(services.NewSpendingAggregator(f.txRepo), f.limits, &rateSourceStub{err: domain.ErrRateUnavailable}, f.clock)

	_, err := evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyUSD, decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestEvaluateLimitResolutionFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("limit store unavailable")
	limits := services.NewLimitService(limitRepoStub{
		findLatestFn: func(context.Context, string, domain.ExpenseCategory, time.Time) (domain.Limit, error) {
			return domain.Limit{}, storeErr
		},
	}, defaultLimit, f.clock)
	evaluator := services.NewLimitEvaluator(services.NewSpendingAggregator(f.txRepo), limits, f.rates, f.clock)

	exceeded, err := evaluator.Evaluate(context.Background(), "A", domain.ExpenseCategoryService, domain.CurrencyUSD, decimal.NewFromInt(5000))
	require.ErrorIs(t, err, storeErr)
	require.False(t, exceeded)
}
