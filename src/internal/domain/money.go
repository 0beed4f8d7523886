package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fraction digits stored for every supported
// currency; amounts are NUMERIC(20, 2) in the database.
const AmountScale = 2

// MaxAccountLength bounds account identifiers to their column width.
const MaxAccountLength = 64

var maxAmount = decimal.New(1, 20-AmountScale)

type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// ValidAmount reports whether a is positive, carries at most AmountScale
// fraction digits and fits the stored precision. Finer amounts are refused
// rather than rounded so the evaluated and the stored spend are the same.
func ValidAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.Equal(a.Truncate(AmountScale)) && a.LessThan(maxAmount)
}

// ValidAccount reports whether account is non-blank and fits MaxAccountLength.
func ValidAccount(account string) bool {
	trimmed := strings.TrimSpace(account)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MaxAccountLength
}
