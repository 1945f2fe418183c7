package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
)

// Config aggregates application configuration loaded from environment
// variables. Pricing values are validated here so a misconfiguration
// fails at startup, never at request time.
type Config struct {
	Env      string
	HTTPAddr string

	TotalCapacity   int
	Currency        string
	BaseRate        int64
	MinimumRate     int64
	MaximumRate     int64
	PeakMonths      []time.Month
	LowMonths       []time.Month
	EventDates      []time.Time
	DepositFraction float64

	OutboxBackend      string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	MongoURI           string
	MongoDB            string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		Currency:         strings.ToUpper(getEnv("CURRENCY", "EUR")),
		OutboxBackend:    strings.ToLower(getEnv("OUTBOX_BACKEND", "memory")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "innkeep"),
	}

	var err error
	if cfg.TotalCapacity, err = parseIntEnv("TOTAL_CAPACITY", 8); err != nil {
		return Config{}, err
	}
	if cfg.BaseRate, err = parseInt64Env("BASE_RATE", 8500); err != nil {
		return Config{}, err
	}
	if cfg.MinimumRate, err = parseInt64Env("MINIMUM_RATE", 5000); err != nil {
		return Config{}, err
	}
	if cfg.MaximumRate, err = parseInt64Env("MAXIMUM_RATE", 25000); err != nil {
		return Config{}, err
	}
	if cfg.DepositFraction, err = parseFloatEnv("DEPOSIT_FRACTION", 0.25); err != nil {
		return Config{}, err
	}
	if cfg.PeakMonths, err = parseMonthsEnv("PEAK_MONTHS", "6,7,8"); err != nil {
		return Config{}, err
	}
	if cfg.LowMonths, err = parseMonthsEnv("LOW_MONTHS", "11,1,2"); err != nil {
		return Config{}, err
	}
	if cfg.EventDates, err = parseDatesEnv("EVENT_DATES"); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.TotalCapacity < 1 {
		return Config{}, fmt.Errorf("TOTAL_CAPACITY must be at least 1")
	}
	if cfg.DepositFraction < 0 || cfg.DepositFraction > 1 {
		return Config{}, fmt.Errorf("DEPOSIT_FRACTION must be within [0, 1]")
	}
	if cfg.OutboxBackend == "mongo" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when OUTBOX_BACKEND=mongo")
	}
	if err := cfg.PricingConfig().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PricingConfig maps the loaded values onto the rate engine's config.
func (c Config) PricingConfig() pricing.Config {
	peak := make(map[time.Month]struct{}, len(c.PeakMonths))
	for _, m := range c.PeakMonths {
		peak[m] = struct{}{}
	}
	low := make(map[time.Month]struct{}, len(c.LowMonths))
	for _, m := range c.LowMonths {
		low[m] = struct{}{}
	}
	dates := make(map[time.Time]struct{}, len(c.EventDates))
	for _, d := range c.EventDates {
		dates[daterange.Day(d)] = struct{}{}
	}
	return pricing.Config{
		Currency:    c.Currency,
		BaseRate:    c.BaseRate,
		MinimumRate: c.MinimumRate,
		MaximumRate: c.MaximumRate,
		PeakMonths:  peak,
		LowMonths:   low,
		EventDates:  dates,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseMonthsEnv(key, def string) ([]time.Month, error) {
	raw := getEnv(key, def)
	var months []time.Month
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 12 {
			return nil, fmt.Errorf("invalid %s month %q", key, part)
		}
		months = append(months, time.Month(n))
	}
	return months, nil
}

func parseDatesEnv(key string) ([]time.Time, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	var dates []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s date %q: %w", key, part, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}
