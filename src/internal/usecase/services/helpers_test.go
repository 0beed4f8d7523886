package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, time.January, 30, 15, 35, 34, 0, time.UTC)

var defaultLimit = domain.LimitDefaults{
	Amount:   decimal.NewFromInt(100),
	Currency: domain.CurrencyEUR,
}

func fixedClock(now time.Time) services.Clock {
	return services.Clock{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

// testSnapshot quotes one USD at 200 KZT and one EUR at 500 KZT, so 5 USD is 2 EUR.
func testSnapshot() domain.RateSnapshot {
	return domain.RateSnapshot{
		RequestDate: testNow.Truncate(24 * time.Hour),
		Reference:   domain.CurrencyKZT,
		Rates: map[domain.Currency]decimal.Decimal{
			domain.CurrencyUSD: decimal.NewFromInt(200),
			domain.CurrencyEUR: decimal.NewFromInt(500),
		},
		FetchedAt: testNow,
	}
}

type alertRecorder struct {
	mu     sync.Mutex
	events []domain.LimitExceededEvent
	err    error
}

func (r *alertRecorder) PublishLimitExceeded(_ context.Context, event domain.LimitExceededEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *alertRecorder) published() []domain.LimitExceededEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LimitExceededEvent(nil), r.events...)
}

type fixture struct {
	clock     services.Clock
	limitRepo *memory.LimitRepository
	txRepo    *memory.TransactionRepository
	rateRepo  *memory.ExchangeRateRepository
	limits    *services.LimitService
	rates     *services.RateService
	evaluator *services.LimitEvaluator
	bank      *services.BankService
	client    *services.ClientService
	alerts    *alertRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:     fixedClock(testNow),
		limitRepo: memory.NewLimitRepository(),
		rateRepo:  memory.NewExchangeRateRepository(testSnapshot()),
		alerts:    &alertRecorder{},
	}
	f.txRepo = memory.NewTransactionRepository(f.limitRepo)
	f.limits = services.NewLimitService(f.limitRepo, defaultLimit, f.clock)
	f.rates = services.NewRateService(f.rateRepo, nil, time.Minute, f.clock)
	f.evaluator = services.NewLimitEvaluator(services.NewSpendingAggregator(f.txRepo), f.limits, f.rates, f.clock)
	f.bank = services.NewBankService(f.txRepo, f.evaluator, f.alerts, f.clock)
	f.client = services.NewClientService(f.limits, f.limitRepo, f.txRepo, time.UTC)
	return f
}

func (f *fixture) seedTransaction(t *testing.T, currency domain.Currency, amount int64, occurredAt time.Time) {
	t.Helper()

	if _, err := f.txRepo.Create(context.Background(), domain.Transaction{
		AccountClient:       "0000000001",
		AccountCounterparty: "9000000000",
		Currency:            currency,
		Amount:              decimal.NewFromInt(amount),
		Category:            domain.ExpenseCategoryService,
		OccurredAt:          occurredAt,
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}
