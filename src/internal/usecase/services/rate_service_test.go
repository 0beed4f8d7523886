package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type rateRepoStub struct {
	latestFn func(ctx context.Context) (domain.RateSnapshot, error)
	saveFn   func(ctx context.Context, snapshot domain.RateSnapshot) error
	loads    int
}

func (s *rateRepoStub) SaveSnapshot(ctx context.Context, snapshot domain.RateSnapshot) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, snapshot)
	}
	return nil
}

func (s *rateRepoStub) LatestSnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	s.loads++
	return s.latestFn(ctx)
}

type supplierStub struct {
	snapshot domain.RateSnapshot
	err      error
}

func (s supplierStub) LatestRates(context.Context) (domain.RateSnapshot, error) {
	return s.snapshot, s.err
}

type movingClock struct {
	now time.Time
}

func (c *movingClock) clock() services.Clock {
	return services.Clock{Now: func() time.Time { return c.now }, Location: time.UTC}
}

func TestRateServiceCachesUntilTTL(t *testing.T) {
	repo := &rateRepoStub{latestFn: func(context.Context) (domain.RateSnapshot, error) {
		return testSnapshot(), nil
	}}
	clock := &movingClock{now: testNow}
	svc := services.NewRateService(repo, nil, time.Minute, clock.clock())
	ctx := context.Background()

	_, err := svc.CurrentSnapshot(ctx)
	require.NoError(t, err)
	_, err = svc.CurrentSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.loads)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = svc.CurrentSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)
}

func TestRateServiceServesStaleSnapshotWhenStoreFails(t *testing.T) {
	fail := false
	repo := &rateRepoStub{latestFn: func(context.Context) (domain.RateSnapshot, error) {
		if fail {
			return domain.RateSnapshot{}, errors.New("db down")
		}
		return testSnapshot(), nil
	}}
	clock := &movingClock{now: testNow}
	svc := services.NewRateService(repo, nil, time.Minute, clock.clock())

	_, err := svc.CurrentSnapshot(context.Background())
	require.NoError(t, err)

	fail = true
	clock.now = clock.now.Add(time.Hour)
	snapshot, err := svc.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, snapshot.Rates[domain.CurrencyUSD].Equal(decimal.NewFromInt(200)))
}

func TestRateServiceWithoutSnapshot(t *testing.T) {
	svc := services.NewRateService(memory.NewExchangeRateRepository(), nil, time.Minute, fixedClock(testNow))

	_, err := svc.CurrentSnapshot(context.Background())
	require.ErrorIs(t, err, domain.ErrRateUnavailable)

	resp, err := svc.GetRates(context.Background())
	require.Error(t, err)
	require.Equal(t, "Rates not found", resp.Message)

	_, err = svc.RefreshRates(context.Background())
	require.Error(t, err)
}

func TestRateServiceRefreshPersistsAndReplacesCache(t *testing.T) {
	repo := memory.NewExchangeRateRepository(testSnapshot())
	fresh := testSnapshot()
	fresh.RequestDate = fresh.RequestDate.AddDate(0, 0, 1)
	fresh.Rates[domain.CurrencyUSD] = decimal.NewFromInt(210)
	fresh.FetchedAt = time.Time{}

	svc := services.NewRateService(repo, supplierStub{snapshot: fresh}, time.Hour, fixedClock(testNow))
	ctx := context.Background()

	_, err := svc.CurrentSnapshot(ctx)
	require.NoError(t, err)

	refreshed, err := svc.RefreshRates(ctx)
	require.NoError(t, err)
	require.True(t, refreshed.FetchedAt.Equal(testNow))

	current, err := svc.CurrentSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, current.Rates[domain.CurrencyUSD].Equal(decimal.NewFromInt(210)))

	stored, err := repo.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, stored.RequestDate.Equal(fresh.RequestDate))
}

func TestRateServiceRefreshSupplierFailureKeepsCache(t *testing.T) {
	repo := memory.NewExchangeRateRepository(testSnapshot())
	svc := services.NewRateService(repo, supplierStub{err: errors.New("timeout")}, time.Hour, fixedClock(testNow))

	_, err := svc.RefreshRates(context.Background())
	require.ErrorContains(t, err, "fetch rates")

	current, err := svc.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, current.Rates[domain.CurrencyEUR].Equal(decimal.NewFromInt(500)))
}

func TestRateServiceGetRates(t *testing.T) {
	svc := services.NewRateService(memory.NewExchangeRateRepository(testSnapshot()), nil, time.Minute, fixedClock(testNow))

	resp, err := svc.GetRates(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "KZT", resp.Data.Reference)
	require.Equal(t, "2024-01-30", resp.Data.RequestDate)
	require.Len(t, resp.Data.Rates, 2)
	require.True(t, resp.Data.Rates["USD"].Equal(decimal.NewFromInt(200)))
}

func TestRateServiceSharedLoadOutlivesCancelledCaller(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	repo := &rateRepoStub{latestFn: func(ctx context.Context) (domain.RateSnapshot, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		if err := ctx.Err(); err != nil {
			return domain.RateSnapshot{}, err
		}
		return testSnapshot(), nil
	}}
	svc := services.NewRateService(repo, nil, time.Minute, fixedClock(testNow))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.CurrentSnapshot(firstCtx)
		firstErr <- err
	}()
	<-entered

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.CurrentSnapshot(context.Background())
		secondErr <- err
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)
	require.NoError(t, <-secondErr)

	snapshot, err := svc.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, snapshot.Rates[domain.CurrencyUSD].Equal(decimal.NewFromInt(200)))
}
