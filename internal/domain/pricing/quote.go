package pricing

import (
	"time"

	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

type NightRate struct {
	Date time.Time
	Rate money.Money
}

// Quote is the priced breakdown of a stay: one rate per night plus the
// total across all requested units.
type Quote struct {
	Nightly []NightRate
	Units   int
	Total   money.Money
}

func (q Quote) Nights() int {
	return len(q.Nightly)
}

func (q Quote) Copy() Quote {
	clone := q
	clone.Nightly = append([]NightRate(nil), q.Nightly...)
	return clone
}

// Quote prices every night of the stay at booking time `now`. The result
// is a pure function of (range, units, now, config).
func (e *Engine) Quote(sr daterange.StayRange, units int, now time.Time) (Quote, error) {
	if err := sr.Validate(); err != nil {
		return Quote{}, err
	}
	quote := Quote{Units: units, Total: money.Money{Currency: e.cfg.Currency}}
	for _, night := range sr.Dates() {
		rate := e.NightlyRate(e.cfg.ContextFor(night, sr.CheckIn, now))
		quote.Nightly = append(quote.Nightly, NightRate{Date: night, Rate: rate})
		total, err := quote.Total.Add(rate.Multiply(int64(units)))
		if err != nil {
			return Quote{}, err
		}
		quote.Total = total
	}
	return quote, nil
}
