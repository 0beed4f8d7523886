package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.RateSupplier = (*Client)(nil)

const DefaultBaseURL = "https://open.er-api.com"

// Client reads rates from an ExchangeRate-API compatible endpoint
// (GET /v6/latest/{base}) and returns them as the value of one unit of each
// currency in the reference currency.
type Client struct {
	baseURL    string
	reference  domain.Currency
	httpClient *http.Client
	now        func() time.Time
}

type latestResponse struct {
	Result             string                 `json:"result"`
	ErrorType          string                 `json:"error-type"`
	BaseCode           string                 `json:"base_code"`
	TimeLastUpdateUnix int64                  `json:"time_last_update_unix"`
	Rates              map[string]json.Number `json:"rates"`
}

func NewClient(baseURL string, reference domain.Currency, timeout time.Duration) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:   trimmed,
		reference: reference,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// LatestRates fails unless every supported currency is quoted, so a partial
// answer never replaces a complete snapshot.
func (c *Client) LatestRates(ctx context.Context) (domain.RateSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v6/latest/%s", c.baseURL, url.PathEscape(c.reference.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("create rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("request rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.RateSnapshot{}, fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var payload latestResponse
	if err := decoder.Decode(&payload); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("decode rates response: %w", err)
	}

	if !strings.EqualFold(payload.Result, "success") {
		return domain.RateSnapshot{}, fmt.Errorf("rates API returned result %q: %s", payload.Result, payload.ErrorType)
	}
	if !strings.EqualFold(payload.BaseCode, c.reference.String()) {
		return domain.RateSnapshot{}, fmt.Errorf("rates API answered for base %q, want %q", payload.BaseCode, c.reference)
	}
	if payload.TimeLastUpdateUnix <= 0 {
		return domain.RateSnapshot{}, errors.New("rates response has no update time")
	}

	rates := make(map[domain.Currency]decimal.Decimal, len(domain.SupportedCurrencies))
	var missing []string
	for _, currency := range domain.SupportedCurrencies {
		if currency == c.reference {
			continue
		}

		raw, ok := payload.Rates[currency.String()]
		if !ok {
			missing = append(missing, currency.String())
			continue
		}

		perReference, err := decimal.NewFromString(raw.String())
		if err != nil {
			return domain.RateSnapshot{}, fmt.Errorf("parse %s rate: %w", currency, err)
		}
		if !perReference.IsPositive() {
			return domain.RateSnapshot{}, fmt.Errorf("%s rate must be positive", currency)
		}

		// The API quotes units of currency per reference unit; invert it.
		rates[currency] = decimal.NewFromInt(1).Div(perReference)
	}

	if len(missing) > 0 {
		return domain.RateSnapshot{}, fmt.Errorf("rates response lacks %s", strings.Join(missing, ", "))
	}

	updatedAt := time.Unix(payload.TimeLastUpdateUnix, 0).UTC()
	return domain.RateSnapshot{
		RequestDate: time.Date(updatedAt.Year(), updatedAt.Month(), updatedAt.Day(), 0, 0, 0, 0, time.UTC),
		Reference:   c.reference,
		Rates:       rates,
		FetchedAt:   c.now().UTC(),
	}, nil
}
