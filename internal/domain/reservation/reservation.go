package reservation

import (
	"errors"
	"time"

	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
	"innkeep/internal/domain/shared/money"
)

var (
	ErrInvalidUnits           = errors.New("reservation: units requested must be at least 1")
	ErrInvalidDepositFraction = errors.New("reservation: deposit fraction must be within [0, 1]")
	ErrInvalidState           = errors.New("reservation: invalid state transition")
	ErrNotFound               = errors.New("reservation: not found")
)

type Reference string

type Status string

const (
	StatusPendingDeposit Status = "PENDING_DEPOSIT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
)

// Reservation is a committed claim on capacity for every night of its
// range. The nightly rates are frozen at commit time; repricing never
// touches existing reservations.
type Reservation struct {
	Reference Reference
	Range     daterange.StayRange
	Units     int
	Price     pricing.Quote
	Deposit   money.Money
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type CreateParams struct {
	Reference Reference
	Range     daterange.StayRange
	Units     int
	Price     pricing.Quote
	Deposit   money.Money
	CreatedAt time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if params.Units < 1 {
		return nil, ErrInvalidUnits
	}
	if params.Reference == "" {
		return nil, errors.New("reservation: reference required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		Reference: params.Reference,
		Range:     params.Range,
		Units:     params.Units,
		Price:     params.Price.Copy(),
		Deposit:   params.Deposit,
		Status:    StatusPendingDeposit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(Committed{Reference: r.Reference, Range: r.Range, Units: r.Units, Total: r.Price.Total, Deposit: r.Deposit, At: now})
	return r, nil
}

// ConfirmDeposit transitions a pending reservation to confirmed once the
// deposit payment clears.
func (r *Reservation) ConfirmDeposit(now time.Time) error {
	if r.Status != StatusPendingDeposit {
		return ErrInvalidState
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(DepositConfirmed{Reference: r.Reference, At: r.UpdatedAt})
	return nil
}

// Cancel releases the reservation's capacity. Cancelling twice is a no-op;
// the bool reports whether this call changed anything.
func (r *Reservation) Cancel(now time.Time) bool {
	if r.Status == StatusCancelled {
		return false
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now.UTC()
	r.Record(Cancelled{Reference: r.Reference, Range: r.Range, Units: r.Units, At: r.UpdatedAt})
	return true
}

// Active reports whether the reservation still consumes capacity.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// Snapshot returns a detached copy safe to read after the store's lock is
// released. Pending events stay with the original aggregate.
func (r *Reservation) Snapshot() *Reservation {
	clone := *r
	clone.EventRecorder = events.EventRecorder{}
	clone.Price = r.Price.Copy()
	return &clone
}
