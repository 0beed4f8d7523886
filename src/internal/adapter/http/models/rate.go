package models

import "github.com/shopspring/decimal"

type RatesResponse struct {
	RequestDate string                     `json:"requestDate"`
	Reference   string                     `json:"reference"`
	Rates       map[string]decimal.Decimal `json:"rates"`
	FetchedAt   string                     `json:"fetchedAt"`
}
