package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ repo_interfaces.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO expense_transactions (
	id,
	account_client,
	account_counterparty,
	currency_code,
	amount,
	expense_category,
	occurred_at,
	limit_exceeded,
	limit_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`

	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.ID,
		transaction.AccountClient,
		transaction.AccountCounterparty,
		string(transaction.Currency),
		transaction.Amount,
		string(transaction.Category),
		transaction.OccurredAt,
		transaction.LimitExceeded,
		transaction.LimitID,
	).Scan(&transaction.ID, &transaction.CreatedAt); err != nil {
		logger.Error("transaction repository create failed", err, logger.Fields{
			"accountClient": transaction.AccountClient,
			"category":      transaction.Category,
			"limitId":       transaction.LimitID,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return transaction, nil
}

func (r *TransactionRepository) SumAmount(ctx context.Context, accountClient string, category domain.ExpenseCategory, currency domain.Currency, month time.Time) (decimal.Decimal, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM expense_transactions
WHERE account_client = $1
  AND expense_category = $2
  AND currency_code = $3
  AND occurred_at >= $4
  AND occurred_at < $5`

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, accountClient, string(category), string(currency), month, month.AddDate(0, 1, 0)).Scan(&sum); err != nil {
		logger.Error("transaction repository sum failed", err, logger.Fields{
			"accountClient": accountClient,
			"category":      category,
			"currency":      currency,
		})
		return decimal.Zero, fmt.Errorf("sum transaction amounts: %w", err)
	}

	return sum, nil
}

func (r *TransactionRepository) ListExceeded(ctx context.Context, accountClient string) ([]domain.ExceededTransaction, error) {
	const query = `
SELECT
	t.id, t.account_client, t.account_counterparty, t.currency_code, t.amount,
	t.expense_category, t.occurred_at, t.limit_exceeded, t.limit_id, t.created_at,
	l.id, l.account_client, l.expense_category, l.limit_sum, l.limit_currency_code,
	l.limit_datetime, l.limit_month, l.created_at
FROM expense_transactions t
JOIN expense_limits l ON l.id = t.limit_id
WHERE t.account_client = $1
  AND t.limit_exceeded
ORDER BY t.occurred_at ASC`

	rows, err := r.db.QueryContext(ctx, query, accountClient)
	if err != nil {
		logger.Error("transaction repository list exceeded failed", err, logger.Fields{
			"accountClient": accountClient,
		})
		return nil, fmt.Errorf("list exceeded transactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ExceededTransaction, 0)
	for rows.Next() {
		var (
			item                         domain.ExceededTransaction
			txCurrency, txCategory       string
			limitCategory, limitCurrency string
		)
		if err := rows.Scan(
			&item.Transaction.ID,
			&item.Transaction.AccountClient,
			&item.Transaction.AccountCounterparty,
			&txCurrency,
			&item.Transaction.Amount,
			&txCategory,
			&item.Transaction.OccurredAt,
			&item.Transaction.LimitExceeded,
			&item.Transaction.LimitID,
			&item.Transaction.CreatedAt,
			&item.Limit.ID,
			&item.Limit.AccountClient,
			&limitCategory,
			&item.Limit.Amount,
			&limitCurrency,
			&item.Limit.LimitDateTime,
			&item.Limit.Month,
			&item.Limit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan exceeded transaction: %w", err)
		}

		item.Transaction.Currency = domain.Currency(txCurrency)
		item.Transaction.Category = domain.ExpenseCategory(txCategory)
		item.Limit.Category = domain.ExpenseCategory(limitCategory)
		item.Limit.Currency = domain.Currency(limitCurrency)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exceeded transactions: %w", err)
	}

	return out, nil
}
