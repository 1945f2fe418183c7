package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"innkeep/internal/app/outbox"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
	"innkeep/internal/domain/shared/money"
)

var (
	// ErrCapacityRace means the commit-time re-check found the capacity
	// gone. Recoverable: the caller re-runs the availability check and
	// retries; the processor never retries on its own.
	ErrCapacityRace = errors.New("booking: capacity changed between check and commit")
	// ErrReferenceCollisionExhausted signals a reference-generation defect,
	// not a transient condition. Not retryable.
	ErrReferenceCollisionExhausted = errors.New("booking: could not generate a unique reference")
)

const maxReferenceAttempts = 5

// Store is the calendar state the processor orchestrates against. All
// mutating methods serialize internally; CommitIfAvailable must fuse the
// availability re-check with the write. Reservations returned by Cancel,
// ConfirmDeposit and ByReference are detached snapshots, and DrainEvents
// yields the events the store collected inside its critical sections.
type Store interface {
	CheckAvailability(ctx context.Context, sr daterange.StayRange, units int) (calendar.Availability, error)
	CommitIfAvailable(ctx context.Context, res *reservation.Reservation, now time.Time) error
	Cancel(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error)
	ConfirmDeposit(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error)
	ByReference(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error)
	HasReference(ctx context.Context, ref reservation.Reference) bool
	DrainEvents() []events.DomainEvent
}

// Result is the outcome of a booking attempt. Available=false is a normal
// business outcome, not an error; it carries what the caller needs to
// suggest alternatives.
type Result struct {
	Available      bool
	Reference      reservation.Reference
	Nights         int
	UnitsAvailable int
	Quote          pricing.Quote
	Deposit        money.Money
	Status         reservation.Status
}

// Processor orchestrates availability, pricing, reference generation and
// the atomic commit.
type Processor struct {
	Store   Store
	Rates   *pricing.Engine
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger

	// Now and NewReference are injectable for tests; zero values fall back
	// to the real clock and random references.
	Now          func() time.Time
	NewReference func() reservation.Reference
}

func (p *Processor) CheckAvailability(ctx context.Context, checkIn, checkOut time.Time, units int) (calendar.Availability, error) {
	sr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return calendar.Availability{}, err
	}
	return p.Store.CheckAvailability(ctx, sr, units)
}

// Quote prices a stay without touching the calendar.
func (p *Processor) Quote(ctx context.Context, checkIn, checkOut time.Time, units int) (pricing.Quote, error) {
	sr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return pricing.Quote{}, err
	}
	if units < 1 {
		return pricing.Quote{}, reservation.ErrInvalidUnits
	}
	return p.Rates.Quote(sr, units, p.now())
}

// AttemptBooking runs the end-to-end flow: check, price, reference,
// double-check + commit. The commit itself is the critical section; the
// initial check only avoids pricing stays that cannot fit anyway.
func (p *Processor) AttemptBooking(ctx context.Context, checkIn, checkOut time.Time, units int, depositFraction float64) (Result, error) {
	if depositFraction < 0 || depositFraction > 1 {
		return Result{}, reservation.ErrInvalidDepositFraction
	}
	sr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return Result{}, err
	}
	avail, err := p.Store.CheckAvailability(ctx, sr, units)
	if err != nil {
		return Result{}, err
	}
	if !avail.Available {
		return Result{Available: false, Nights: avail.Nights, UnitsAvailable: avail.UnitsAvailable}, nil
	}

	now := p.now()
	quote, err := p.Rates.Quote(sr, units, now)
	if err != nil {
		return Result{}, err
	}
	deposit := quote.Total.MultiplyFraction(depositFraction)

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref := p.newReference()
		if p.Store.HasReference(ctx, ref) {
			continue
		}
		res, err := reservation.New(reservation.CreateParams{
			Reference: ref,
			Range:     sr,
			Units:     units,
			Price:     quote,
			Deposit:   deposit,
			CreatedAt: now,
		})
		if err != nil {
			return Result{}, err
		}
		switch err := p.Store.CommitIfAvailable(ctx, res, now); {
		case errors.Is(err, calendar.ErrReferenceExists):
			continue
		case errors.Is(err, calendar.ErrCapacityExceeded):
			p.recordEvents(ctx, p.Store.DrainEvents())
			return Result{}, fmt.Errorf("%w: %d units over %d nights", ErrCapacityRace, units, sr.Nights())
		case err != nil:
			return Result{}, err
		}
		// The committed aggregate now belongs to the store; the result is
		// built from the processor's own values.
		p.recordEvents(ctx, p.Store.DrainEvents())
		p.log().Info("reservation committed",
			"reference", ref, "nights", sr.Nights(), "units", units,
			"total", quote.Total.Amount, "deposit", deposit.Amount)
		return Result{
			Available:      true,
			Reference:      ref,
			Nights:         sr.Nights(),
			UnitsAvailable: avail.UnitsAvailable,
			Quote:          quote,
			Deposit:        deposit,
			Status:         reservation.StatusPendingDeposit,
		}, nil
	}
	return Result{}, ErrReferenceCollisionExhausted
}

// ConfirmDeposit marks a pending reservation confirmed once its deposit
// payment has cleared.
func (p *Processor) ConfirmDeposit(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error) {
	res, err := p.Store.ConfirmDeposit(ctx, ref, p.now())
	if err != nil {
		return nil, err
	}
	p.recordEvents(ctx, p.Store.DrainEvents())
	return res, nil
}

// CancelBooking releases capacity. Idempotent: repeating a cancel neither
// errors nor emits another event.
func (p *Processor) CancelBooking(ctx context.Context, ref reservation.Reference) error {
	if _, err := p.Store.Cancel(ctx, ref, p.now()); err != nil {
		return err
	}
	p.recordEvents(ctx, p.Store.DrainEvents())
	return nil
}

func (p *Processor) Reservation(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error) {
	return p.Store.ByReference(ctx, ref)
}

func (p *Processor) recordEvents(ctx context.Context, evs []events.DomainEvent) {
	if err := outbox.RecordDomainEvents(ctx, p.Outbox, p.Encoder, evs); err != nil {
		p.log().Error("outbox record failed", "error", err)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Processor) newReference() reservation.Reference {
	if p.NewReference != nil {
		return p.NewReference()
	}
	return DefaultReference()
}

func (p *Processor) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// DefaultReference builds a short human-readable booking code from a
// random UUID. Uniqueness is enforced by the collision check, not here.
func DefaultReference() reservation.Reference {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return reservation.Reference("INN-" + strings.ToUpper(raw[:10]))
}
