package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=expense_limits_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultRatesAPIURL = "https://open.er-api.com"

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	DatabaseDSN string
	DataBackend string
	HTTPAddr    string
	LogLevel    string
	LogFormat   string
	Location    *time.Location

	ReferenceCurrency    domain.Currency
	DefaultLimitAmount   decimal.Decimal
	DefaultLimitCurrency domain.Currency

	RatesAPIURL          string
	RatesAPITimeout      time.Duration
	RatesRefreshInterval time.Duration
	RatesCacheTTL        time.Duration

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Load reads configuration from the environment. A .env file, when present,
// is loaded first and never overrides variables that are already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	var errs []string

	location := time.Local
	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid TIMEZONE %q: %v", tz, err))
		} else {
			location = loaded
		}
	}

	defaultAmount, err := decimal.NewFromString(getEnv("DEFAULT_LIMIT_AMOUNT", "100.0"))
	if err != nil {
		errs = append(errs, "DEFAULT_LIMIT_AMOUNT must be numeric")
	}

	cfg := Config{
		DatabaseDSN:          normalizeConnectionString(getEnv("DATABASE_DSN", defaultConnectionString)),
		DataBackend:          strings.ToLower(getEnv("DATA_BACKEND", BackendPostgres)),
		HTTPAddr:             getEnv("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "console")),
		Location:             location,
		ReferenceCurrency:    domain.Currency(strings.ToUpper(getEnv("REFERENCE_CURRENCY", string(domain.CurrencyKZT)))),
		DefaultLimitAmount:   defaultAmount,
		DefaultLimitCurrency: domain.Currency(strings.ToUpper(getEnv("DEFAULT_LIMIT_CURRENCY", string(domain.CurrencyEUR)))),
		RatesAPIURL:          ratesAPIURL(getEnv("RATES_API_URL", defaultRatesAPIURL)),
		RatesAPITimeout:      getEnvDuration("RATES_API_TIMEOUT", 5*time.Second, &errs),
		RatesRefreshInterval: getEnvDuration("RATES_REFRESH_INTERVAL", time.Hour, &errs),
		RatesCacheTTL:        getEnvDuration("RATES_CACHE_TTL", 5*time.Minute, &errs),
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "expense-limits"),
		AMQPQueue:            getEnv("AMQP_QUEUE", "limit_exceeded"),
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) LimitDefaults() domain.LimitDefaults {
	return domain.LimitDefaults{
		Amount:   c.DefaultLimitAmount,
		Currency: c.DefaultLimitCurrency,
	}
}

// Validate aggregates every problem instead of stopping at the first one.
func (c Config) Validate() error {
	var errs []string

	if c.DataBackend != BackendPostgres && c.DataBackend != BackendMemory {
		errs = append(errs, fmt.Sprintf("invalid DATA_BACKEND %q: must be %s or %s", c.DataBackend, BackendPostgres, BackendMemory))
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, "HTTP_ADDR cannot be empty")
	}
	if !c.ReferenceCurrency.IsSupported() {
		errs = append(errs, fmt.Sprintf("REFERENCE_CURRENCY %q is not supported", c.ReferenceCurrency))
	}
	if !c.DefaultLimitCurrency.IsSupported() {
		errs = append(errs, fmt.Sprintf("DEFAULT_LIMIT_CURRENCY %q is not supported", c.DefaultLimitCurrency))
	}
	if !domain.ValidAmount(c.DefaultLimitAmount) {
		errs = append(errs, "DEFAULT_LIMIT_AMOUNT must be greater than zero with at most two decimal places")
	}
	if c.RatesRefreshInterval <= 0 {
		errs = append(errs, "RATES_REFRESH_INTERVAL must be positive")
	}
	if c.RatesAPIURL != "" {
		if parsed, err := url.Parse(c.RatesAPIURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid RATES_API_URL %q", c.RatesAPIURL))
		}
	}
	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil || (parsed.Scheme != "amqp" && parsed.Scheme != "amqps") {
			errs = append(errs, "invalid AMQP_URL: scheme must be amqp or amqps")
		}
		if c.AMQPExchange == "" || c.AMQPQueue == "" {
			errs = append(errs, "AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// ratesAPIURL maps "none" to an empty URL, which disables the rate refresher.
func ratesAPIURL(raw string) string {
	if strings.EqualFold(raw, "none") {
		return ""
	}
	return raw
}

func getEnvDuration(key string, fallback time.Duration, errs *[]string) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}

	*errs = append(*errs, fmt.Sprintf("invalid %s %q: must be a duration", key, raw))
	return fallback
}

func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
