package domain

import (
	"fmt"
	"slices"
	"strings"
)

type Currency string

const (
	CurrencyKZT Currency = "KZT"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyRUB Currency = "RUB"
)

// SupportedCurrencies is also the bucket order used when aggregating spend.
var SupportedCurrencies = []Currency{CurrencyKZT, CurrencyUSD, CurrencyEUR, CurrencyRUB}

func ParseCurrency(raw string) (Currency, error) {
	currency := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !currency.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, raw)
	}

	return currency, nil
}

func (c Currency) IsSupported() bool {
	return slices.Contains(SupportedCurrencies, c)
}

func (c Currency) String() string {
	return string(c)
}
