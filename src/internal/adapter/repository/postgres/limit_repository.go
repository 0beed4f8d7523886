package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ repo_interfaces.LimitRepository = (*LimitRepository)(nil)

type LimitRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const limitColumns = `id, account_client, expense_category, limit_sum, limit_currency_code, limit_datetime, limit_month, created_at`

func NewLimitRepository(db *sql.DB) *LimitRepository {
	return &LimitRepository{db: db}
}

func (r *LimitRepository) FindLatest(ctx context.Context, accountClient string, category domain.ExpenseCategory, month time.Time) (domain.Limit, error) {
	const query = `
SELECT ` + limitColumns + `
FROM expense_limits
WHERE account_client = $1
  AND expense_category = $2
  AND limit_month >= $3
  AND limit_month < $4
ORDER BY limit_datetime DESC, created_at DESC
LIMIT 1`

	var limit domain.Limit
	if err := scanLimit(r.db.QueryRowContext(ctx, query, accountClient, string(category), month, month.AddDate(0, 1, 0)), &limit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Limit{}, domain.ErrRecordNotFound
		}
		logger.Error("limit repository find latest failed", err, logger.Fields{
			"accountClient": accountClient,
			"category":      category,
			"month":         month,
		})
		return domain.Limit{}, fmt.Errorf("find latest limit: %w", err)
	}

	return limit, nil
}

func (r *LimitRepository) Create(ctx context.Context, limit domain.Limit) (domain.Limit, error) {
	const query = `
INSERT INTO expense_limits (
	id,
	account_client,
	expense_category,
	limit_sum,
	limit_currency_code,
	limit_datetime,
	limit_month
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + limitColumns

	if limit.ID == "" {
		limit.ID = uuid.NewString()
	}

	var created domain.Limit
	if err := scanLimit(r.db.QueryRowContext(
		ctx,
		query,
		limit.ID,
		limit.AccountClient,
		string(limit.Category),
		limit.Amount,
		string(limit.Currency),
		limit.LimitDateTime,
		limit.Month,
	), &created); err != nil {
		if isUniqueViolation(err) {
			return domain.Limit{}, fmt.Errorf("create limit: a limit with the same datetime already exists: %w", err)
		}
		logger.Error("limit repository create failed", err, logger.Fields{
			"accountClient": limit.AccountClient,
			"category":      limit.Category,
		})
		return domain.Limit{}, fmt.Errorf("create limit: %w", err)
	}

	return created, nil
}

func (r *LimitRepository) CreateIfAbsent(ctx context.Context, limit domain.Limit) (bool, error) {
	const query = `
INSERT INTO expense_limits (
	id,
	account_client,
	expense_category,
	limit_sum,
	limit_currency_code,
	limit_datetime,
	limit_month
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (account_client, expense_category, limit_datetime) DO NOTHING`

	if limit.ID == "" {
		limit.ID = uuid.NewString()
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		limit.ID,
		limit.AccountClient,
		string(limit.Category),
		limit.Amount,
		string(limit.Currency),
		limit.LimitDateTime,
		limit.Month,
	)
	if err != nil {
		logger.Error("limit repository create if absent failed", err, logger.Fields{
			"accountClient": limit.AccountClient,
			"category":      limit.Category,
		})
		return false, fmt.Errorf("create limit if absent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create limit if absent rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *LimitRepository) ListByAccount(ctx context.Context, accountClient string) ([]domain.Limit, error) {
	const query = `
SELECT ` + limitColumns + `
FROM expense_limits
WHERE account_client = $1
ORDER BY limit_datetime ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, accountClient)
	if err != nil {
		logger.Error("limit repository list failed", err, logger.Fields{
			"accountClient": accountClient,
		})
		return nil, fmt.Errorf("list limits: %w", err)
	}
	defer rows.Close()

	limits := make([]domain.Limit, 0)
	for rows.Next() {
		var limit domain.Limit
		if err := scanLimit(rows, &limit); err != nil {
			return nil, fmt.Errorf("scan limit: %w", err)
		}
		limits = append(limits, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate limits: %w", err)
	}

	return limits, nil
}

func scanLimit(row rowScanner, limit *domain.Limit) error {
	var category, currency string
	if err := row.Scan(
		&limit.ID,
		&limit.AccountClient,
		&category,
		&limit.Amount,
		&currency,
		&limit.LimitDateTime,
		&limit.Month,
		&limit.CreatedAt,
	); err != nil {
		return err
	}

	limit.Category = domain.ExpenseCategory(category)
	limit.Currency = domain.Currency(currency)
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
