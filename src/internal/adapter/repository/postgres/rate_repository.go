package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/shopspring/decimal"
)

var _ repo_interfaces.ExchangeRateRepository = (*ExchangeRateRepository)(nil)

type ExchangeRateRepository struct {
	db *sql.DB
}

func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// SaveSnapshot upserts one row per currency for the snapshot's request date.
func (r *ExchangeRateRepository) SaveSnapshot(ctx context.Context, snapshot domain.RateSnapshot) error {
	const query = `
INSERT INTO exchange_rates (request_date, reference_currency, currency_code, rate, fetched_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (request_date, currency_code) DO UPDATE
SET rate = EXCLUDED.rate,
    reference_currency = EXCLUDED.reference_currency,
    fetched_at = EXCLUDED.fetched_at`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save rates tx: %w", err)
	}

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	for currency, rate := range snapshot.Rates {
		if _, err := tx.ExecContext(ctx, query, snapshot.RequestDate, string(snapshot.Reference), string(currency), rate, fetchedAt); err != nil {
			_ = tx.Rollback()
			logger.Error("rate repository save failed", err, logger.Fields{
				"requestDate": snapshot.RequestDate,
				"currency":    currency,
			})
			return fmt.Errorf("save rate %s: %w", currency, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save rates tx: %w", err)
	}

	return nil
}

func (r *ExchangeRateRepository) LatestSnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	const query = `
SELECT request_date, reference_currency, currency_code, rate, fetched_at
FROM exchange_rates
WHERE request_date = (SELECT MAX(request_date) FROM exchange_rates)`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("rate repository latest snapshot failed", err, nil)
		return domain.RateSnapshot{}, fmt.Errorf("load latest rates: %w", err)
	}
	defer rows.Close()

	snapshot := domain.RateSnapshot{Rates: make(map[domain.Currency]decimal.Decimal)}
	found := false
	for rows.Next() {
		var (
			reference, currency string
			rate                decimal.Decimal
			fetchedAt           time.Time
		)
		if err := rows.Scan(&snapshot.RequestDate, &reference, &currency, &rate, &fetchedAt); err != nil {
			return domain.RateSnapshot{}, fmt.Errorf("scan rate: %w", err)
		}

		found = true
		snapshot.Reference = domain.Currency(reference)
		snapshot.Rates[domain.Currency(currency)] = rate
		if fetchedAt.After(snapshot.FetchedAt) {
			snapshot.FetchedAt = fetchedAt
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("iterate rates: %w", err)
	}

	if !found {
		return domain.RateSnapshot{}, domain.ErrRecordNotFound
	}

	return snapshot, nil
}
