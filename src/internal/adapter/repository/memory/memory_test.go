package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var january = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestLimitRepositoryFindLatestPicksNewestInMonth(t *testing.T) {
	repo := NewLimitRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Limit{
		AccountClient: "0000000001", Category: domain.ExpenseCategoryService,
		Amount: decimal.NewFromInt(1000), Currency: domain.CurrencyRUB,
		LimitDateTime: january, Month: january,
	})
	require.NoError(t, err)
	later, err := repo.Create(ctx, domain.Limit{
		AccountClient: "0000000001", Category: domain.ExpenseCategoryService,
		Amount: decimal.NewFromInt(500), Currency: domain.CurrencyEUR,
		LimitDateTime: january.Add(29 * 24 * time.Hour), Month: january,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Limit{
		AccountClient: "0000000001", Category: domain.ExpenseCategoryService,
		Amount: decimal.NewFromInt(1), Currency: domain.CurrencyEUR,
		LimitDateTime: january.AddDate(0, 1, 0), Month: january.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	got, err := repo.FindLatest(ctx, "0000000001", domain.ExpenseCategoryService, january)
	require.NoError(t, err)
	require.Equal(t, later.ID, got.ID)

	_, err = repo.FindLatest(ctx, "0000000001", domain.ExpenseCategoryProduct, january)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestLimitRepositoryCreateIfAbsentKeepsSingleRow(t *testing.T) {
	repo := NewLimitRepository()
	ctx := context.Background()
	limit := domain.Limit{
		AccountClient: "0000000001", Category: domain.ExpenseCategoryProduct,
		Amount: decimal.NewFromInt(100), Currency: domain.CurrencyEUR,
		LimitDateTime: january, Month: january,
	}

	var wg sync.WaitGroup
	created := make(chan bool, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CreateIfAbsent(ctx, limit)
			require.NoError(t, err)
			created <- ok
		}()
	}
	wg.Wait()
	close(created)

	winners := 0
	for ok := range created {
		if ok {
			winners++
		}
	}
	require.Equal(t, 1, winners)

	limits, err := repo.ListByAccount(ctx, "0000000001")
	require.NoError(t, err)
	require.Len(t, limits, 1)
}

func TestTransactionRepositorySumAmountWindowsByMonth(t *testing.T) {
	limits := NewLimitRepository()
	repo := NewTransactionRepository(limits)
	ctx := context.Background()

	for _, tx := range []domain.Transaction{
		{AccountClient: "A", Category: domain.ExpenseCategoryService, Currency: domain.CurrencyUSD, Amount: decimal.NewFromInt(10), OccurredAt: january.Add(time.Hour)},
		{AccountClient: "A", Category: domain.ExpenseCategoryService, Currency: domain.CurrencyUSD, Amount: decimal.NewFromInt(15), OccurredAt: january.AddDate(0, 0, 30)},
		{AccountClient: "A", Category: domain.ExpenseCategoryService, Currency: domain.CurrencyUSD, Amount: decimal.NewFromInt(99), OccurredAt: january.AddDate(0, 1, 0)},
		{AccountClient: "A", Category: domain.ExpenseCategoryService, Currency: domain.CurrencyEUR, Amount: decimal.NewFromInt(7), OccurredAt: january.Add(time.Hour)},
		{AccountClient: "A", Category: domain.ExpenseCategoryProduct, Currency: domain.CurrencyUSD, Amount: decimal.NewFromInt(3), OccurredAt: january.Add(time.Hour)},
		{AccountClient: "B", Category: domain.ExpenseCategoryService, Currency: domain.CurrencyUSD, Amount: decimal.NewFromInt(5), OccurredAt: january.Add(time.Hour)},
	} {
		_, err := repo.Create(ctx, tx)
		require.NoError(t, err)
	}

	sum, err := repo.SumAmount(ctx, "A", domain.ExpenseCategoryService, domain.CurrencyUSD, january)
	require.NoError(t, err)
	require.True(t, sum.Equal(decimal.NewFromInt(25)), sum.String())

	sum, err = repo.SumAmount(ctx, "A", domain.ExpenseCategoryService, domain.CurrencyKZT, january)
	require.NoError(t, err)
	require.True(t, sum.IsZero())
}

func TestTransactionRepositoryListExceededJoinsLimit(t *testing.T) {
	limits := NewLimitRepository()
	repo := NewTransactionRepository(limits)
	ctx := context.Background()

	limit, err := limits.Create(ctx, domain.Limit{
		AccountClient: "A", Category: domain.ExpenseCategoryService,
		Amount: decimal.NewFromInt(100), Currency: domain.CurrencyEUR,
		LimitDateTime: january, Month: january,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.Transaction{AccountClient: "A", LimitID: limit.ID, LimitExceeded: false, OccurredAt: january})
	require.NoError(t, err)
	exceeded, err := repo.Create(ctx, domain.Transaction{AccountClient: "A", LimitID: limit.ID, LimitExceeded: true, OccurredAt: january.Add(time.Hour)})
	require.NoError(t, err)

	got, err := repo.ListExceeded(ctx, "A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, exceeded.ID, got[0].Transaction.ID)
	require.Equal(t, limit.ID, got[0].Limit.ID)
}

func TestExchangeRateRepositoryLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewExchangeRateRepository()

	_, err := repo.LatestSnapshot(ctx)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	require.NoError(t, repo.SaveSnapshot(ctx, DefaultRateSnapshot(january)))
	newer := DefaultRateSnapshot(january.AddDate(0, 0, 1))
	newer.Rates[domain.CurrencyUSD] = decimal.NewFromInt(480)
	require.NoError(t, repo.SaveSnapshot(ctx, newer))

	got, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, got.RequestDate.Equal(newer.RequestDate))
	require.True(t, got.Rates[domain.CurrencyUSD].Equal(decimal.NewFromInt(480)))

	got.Rates[domain.CurrencyUSD] = decimal.Zero
	again, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, again.Rates[domain.CurrencyUSD].Equal(decimal.NewFromInt(480)))
}
