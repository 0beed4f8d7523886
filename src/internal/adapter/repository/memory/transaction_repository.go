package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	limits       *LimitRepository
}

// NewTransactionRepository resolves limit references through limits when
// listing exceeded transactions.
func NewTransactionRepository(limits *LimitRepository) *TransactionRepository {
	return &TransactionRepository{limits: limits}
}

func (r *TransactionRepository) Create(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	transaction.CreatedAt = time.Now().UTC()
	r.transactions = append(r.transactions, transaction)

	return transaction, nil
}

func (r *TransactionRepository) SumAmount(_ context.Context, accountClient string, category domain.ExpenseCategory, currency domain.Currency, month time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	end := month.AddDate(0, 1, 0)
	sum := decimal.Zero
	for _, transaction := range r.transactions {
		if transaction.AccountClient != accountClient ||
			transaction.Category != category ||
			transaction.Currency != currency {
			continue
		}
		if transaction.OccurredAt.Before(month) || !transaction.OccurredAt.Before(end) {
			continue
		}
		sum = sum.Add(transaction.Amount)
	}

	return sum, nil
}

func (r *TransactionRepository) ListExceeded(_ context.Context, accountClient string) ([]domain.ExceededTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ExceededTransaction, 0)
	for _, transaction := range r.transactions {
		if transaction.AccountClient != accountClient || !transaction.LimitExceeded {
			continue
		}

		limit, _ := r.limits.get(transaction.LimitID)
		out = append(out, domain.ExceededTransaction{
			Transaction: transaction,
			Limit:       limit,
		})
	}

	slices.SortStableFunc(out, func(a, b domain.ExceededTransaction) int {
		return a.Transaction.OccurredAt.Compare(b.Transaction.OccurredAt)
	})

	return out, nil
}

// All returns a copy of every stored transaction.
func (r *TransactionRepository) All() []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.transactions)
}
