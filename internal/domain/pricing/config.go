package pricing

import (
	"errors"
	"time"

	"innkeep/internal/domain/shared/daterange"
)

var (
	ErrInvalidBaseRate = errors.New("pricing: base rate must be positive")
	ErrInvalidBounds   = errors.New("pricing: minimum rate must not exceed maximum rate")
	ErrInvalidCurrency = errors.New("pricing: currency must be a 3-letter code")
)

// Config parameterizes the rate engine. All rates are integer minor
// currency units. Validation happens once at engine construction so a
// misconfiguration can never surface as a nonsensical price mid-request.
type Config struct {
	Currency    string
	BaseRate    int64
	MinimumRate int64
	MaximumRate int64
	PeakMonths  map[time.Month]struct{}
	LowMonths   map[time.Month]struct{}
	EventDates  map[time.Time]struct{}
}

func (c Config) Validate() error {
	if len(c.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if c.BaseRate <= 0 {
		return ErrInvalidBaseRate
	}
	if c.MinimumRate < 0 || c.MinimumRate > c.MaximumRate {
		return ErrInvalidBounds
	}
	return nil
}

// SeasonOf classifies a date by its month; months in neither set are shoulder.
func (c Config) SeasonOf(t time.Time) Season {
	month := t.UTC().Month()
	if _, ok := c.PeakMonths[month]; ok {
		return SeasonPeak
	}
	if _, ok := c.LowMonths[month]; ok {
		return SeasonLow
	}
	return SeasonShoulder
}

// HasEvent reports whether a qualifying local event falls on the given date.
func (c Config) HasEvent(t time.Time) bool {
	_, ok := c.EventDates[daterange.Day(t)]
	return ok
}
