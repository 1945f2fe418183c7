package pricing

import (
	"time"

	"innkeep/internal/domain/shared/daterange"
)

type Season string

const (
	SeasonPeak     Season = "PEAK"
	SeasonLow      Season = "LOW"
	SeasonShoulder Season = "SHOULDER"
)

// Context carries everything a rate for a single night depends on. It is
// derived fresh per request and never persisted; two identical contexts
// always price identically.
type Context struct {
	Date          time.Time
	DayOfWeek     time.Weekday
	LeadTimeDays  int
	Season        Season
	HasLocalEvent bool
}

// ContextFor builds the pricing context for one night of a stay. Lead time
// counts whole days from the booking moment to check-in, not to the night
// itself, so every night of a stay shares the same lead-time adjustment.
func (c Config) ContextFor(night, checkIn, now time.Time) Context {
	night = daterange.Day(night)
	lead := int(daterange.Day(checkIn).Sub(daterange.Day(now)).Hours() / 24)
	return Context{
		Date:          night,
		DayOfWeek:     night.Weekday(),
		LeadTimeDays:  lead,
		Season:        c.SeasonOf(night),
		HasLocalEvent: c.HasEvent(night),
	}
}
