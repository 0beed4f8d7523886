package domain

import (
	"fmt"
	"strings"
)

type ExpenseCategory string

const (
	ExpenseCategoryService ExpenseCategory = "SERVICE"
	ExpenseCategoryProduct ExpenseCategory = "PRODUCT"
)

// ParseExpenseCategory accepts any letter case and returns the canonical upper-case value.
func ParseExpenseCategory(raw string) (ExpenseCategory, error) {
	category := ExpenseCategory(strings.ToUpper(strings.TrimSpace(raw)))
	switch category {
	case ExpenseCategoryService, ExpenseCategoryProduct:
		return category, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
}

func (c ExpenseCategory) String() string {
	return string(c)
}
