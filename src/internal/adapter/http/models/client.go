package models

import (
	"errors"
	"strings"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type SetLimitRequest struct {
	AccountFrom            string          `json:"account_from"`
	LimitSum               decimal.Decimal `json:"limit_sum"`
	LimitCurrencyShortname string          `json:"limit_currency_shortname"`
	ExpenseCategory        string          `json:"expense_category"`
}

func (r SetLimitRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountFrom) == "" {
		errs = append(errs, "account_from is required")
	} else if !domain.ValidAccount(r.AccountFrom) {
		errs = append(errs, "account_from must be at most 64 characters")
	}
	if !domain.ValidAmount(r.LimitSum) {
		errs = append(errs, "limit_sum must be greater than zero with at most two decimal places")
	}
	if _, err := domain.ParseCurrency(r.LimitCurrencyShortname); err != nil {
		errs = append(errs, "limit_currency_shortname must be one of KZT, USD, EUR, RUB")
	}
	if _, err := domain.ParseExpenseCategory(r.ExpenseCategory); err != nil {
		errs = append(errs, "expense_category must be SERVICE or PRODUCT")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type LimitResponse struct {
	ID                     string          `json:"id"`
	AccountFrom            string          `json:"account_from"`
	LimitSum               decimal.Decimal `json:"limit_sum"`
	LimitCurrencyShortname string          `json:"limit_currency_shortname"`
	ExpenseCategory        string          `json:"expense_category"`
	LimitDatetime          string          `json:"limit_datetime"`
}

type ExceededTransactionResponse struct {
	AccountFrom            string          `json:"account_from"`
	AccountTo              string          `json:"account_to"`
	CurrencyShortname      string          `json:"currency_shortname"`
	Sum                    decimal.Decimal `json:"Sum"`
	ExpenseCategory        string          `json:"expense_category"`
	Datetime               string          `json:"datetime"`
	LimitSum               decimal.Decimal `json:"limit_sum"`
	LimitCurrencyShortname string          `json:"limit_currency_shortname"`
	LimitDatetime          string          `json:"limit_datetime"`
}
