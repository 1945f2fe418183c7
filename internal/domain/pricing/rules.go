package pricing

import (
	"time"

	"innkeep/internal/domain/shared/money"
)

const (
	weekendFactor    = 1.2
	earlyBirdFactor  = 0.95
	lastMinuteFactor = 1.15
	peakFactor       = 1.3
	lowFactor        = 0.8
	eventFactor      = 1.4

	earlyBirdLeadDays  = 30
	lastMinuteLeadDays = 3
)

// Rule is a single named multiplicative adjustment. Rules compound on the
// running rate, so their order is part of the pricing contract.
type Rule struct {
	Name   string
	Factor func(Context) float64
}

// Chain returns the adjustment rules in their fixed order:
// weekend, lead time, season, local event.
func Chain() []Rule {
	return []Rule{
		{Name: "weekend", Factor: weekendRule},
		{Name: "lead_time", Factor: leadTimeRule},
		{Name: "season", Factor: seasonRule},
		{Name: "local_event", Factor: localEventRule},
	}
}

func weekendRule(ctx Context) float64 {
	if ctx.DayOfWeek == time.Friday || ctx.DayOfWeek == time.Saturday {
		return weekendFactor
	}
	return 1.0
}

func leadTimeRule(ctx Context) float64 {
	switch {
	case ctx.LeadTimeDays > earlyBirdLeadDays:
		return earlyBirdFactor
	case ctx.LeadTimeDays < lastMinuteLeadDays:
		return lastMinuteFactor
	default:
		return 1.0
	}
}

func seasonRule(ctx Context) float64 {
	switch ctx.Season {
	case SeasonPeak:
		return peakFactor
	case SeasonLow:
		return lowFactor
	default:
		return 1.0
	}
}

func localEventRule(ctx Context) float64 {
	if ctx.HasLocalEvent {
		return eventFactor
	}
	return 1.0
}

// Engine computes deterministic nightly rates from a validated Config and
// the fixed rule chain. It holds no mutable state.
type Engine struct {
	cfg   Config
	rules []Rule
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, rules: Chain()}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// NightlyRate applies the rule chain to the base rate, clamps the result
// into [MinimumRate, MaximumRate] and rounds half-up to minor units.
func (e *Engine) NightlyRate(ctx Context) money.Money {
	rate := float64(e.cfg.BaseRate)
	for _, rule := range e.rules {
		rate *= rule.Factor(ctx)
	}
	if rate < float64(e.cfg.MinimumRate) {
		rate = float64(e.cfg.MinimumRate)
	}
	if rate > float64(e.cfg.MaximumRate) {
		rate = float64(e.cfg.MaximumRate)
	}
	return money.Money{Amount: money.RoundHalfUp(rate), Currency: e.cfg.Currency}
}
