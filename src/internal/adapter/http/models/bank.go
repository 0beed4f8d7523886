package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionRequest is the transaction event posted by the bank.
type BankTransactionRequest struct {
	AccountFrom       string          `json:"account_from"`
	AccountTo         string          `json:"account_to"`
	CurrencyShortname string          `json:"currency_shortname"`
	Sum               decimal.Decimal `json:"Sum"`
	ExpenseCategory   string          `json:"expense_category"`
	Datetime          time.Time       `json:"datetime"`
}

// Validate only checks the shape of the request. Business rules such as the
// category set or future dates produce a rejection outcome instead.
func (r BankTransactionRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountFrom) == "" {
		errs = append(errs, "account_from is required")
	} else if !domain.ValidAccount(r.AccountFrom) {
		errs = append(errs, "account_from must be at most 64 characters")
	}
	if strings.TrimSpace(r.AccountTo) == "" {
		errs = append(errs, "account_to is required")
	} else if !domain.ValidAccount(r.AccountTo) {
		errs = append(errs, "account_to must be at most 64 characters")
	}
	if strings.TrimSpace(r.CurrencyShortname) == "" {
		errs = append(errs, "currency_shortname is required")
	}
	if strings.TrimSpace(r.ExpenseCategory) == "" {
		errs = append(errs, "expense_category is required")
	}
	if r.Datetime.IsZero() {
		errs = append(errs, "datetime is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type TransactionResponse struct {
	ID                string          `json:"id"`
	AccountFrom       string          `json:"account_from"`
	AccountTo         string          `json:"account_to"`
	CurrencyShortname string          `json:"currency_shortname"`
	Sum               decimal.Decimal `json:"Sum"`
	ExpenseCategory   string          `json:"expense_category"`
	Datetime          string          `json:"datetime"`
	LimitExceeded     bool            `json:"limit_exceeded"`
	LimitID           string          `json:"limit_id"`
}
