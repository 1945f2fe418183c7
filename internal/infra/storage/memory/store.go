package memory

import (
	"context"
	"sync"
	"time"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
)

// CalendarStore guards the occupancy ledger with a single RWMutex.
// CommitIfAvailable holds the write lock across the availability re-check
// and the per-date writes, so no two commits for overlapping ranges can
// interleave their read-check-write sequence. Every reservation that
// crosses the lock boundary outward is a detached snapshot, and aggregate
// events are drained into the store's own buffer while the lock is still
// held; no caller ever reads a live aggregate another request may be
// mutating.
type CalendarStore struct {
	mu      sync.RWMutex
	ledger  *calendar.Ledger
	pending []events.DomainEvent
}

func NewCalendarStore(totalCapacity int) (*CalendarStore, error) {
	ledger, err := calendar.NewLedger(totalCapacity)
	if err != nil {
		return nil, err
	}
	return &CalendarStore{ledger: ledger}, nil
}

func (s *CalendarStore) Capacity() int {
	return s.ledger.Capacity()
}

// CheckAvailability is the read-only weakest-link check over the range.
func (s *CalendarStore) CheckAvailability(ctx context.Context, sr daterange.StayRange, units int) (calendar.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Check(sr, units)
}

// Occupancy reports committed units for a single date.
func (s *CalendarStore) Occupancy(ctx context.Context, date time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Occupancy(date)
}

// CommitIfAvailable fuses the double-check and the commit into one
// critical section. calendar.ErrCapacityExceeded means another commit won
// the race since the caller's earlier check.
func (s *CalendarStore) CommitIfAvailable(ctx context.Context, res *reservation.Reservation, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Commit(res, now); err != nil {
		s.collectLedgerEventsLocked()
		return err
	}
	s.collectAggregateEventsLocked(res)
	return nil
}

// Cancel releases a reservation's capacity. Idempotent by delegation.
func (s *CalendarStore) Cancel(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.ledger.Cancel(ref, now)
	if err != nil {
		return nil, err
	}
	s.collectAggregateEventsLocked(res)
	return res.Snapshot(), nil
}

// ConfirmDeposit moves a pending reservation to confirmed.
func (s *CalendarStore) ConfirmDeposit(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.ledger.ByReference(ref)
	if err != nil {
		return nil, err
	}
	if err := res.ConfirmDeposit(now); err != nil {
		return nil, err
	}
	s.collectAggregateEventsLocked(res)
	return res.Snapshot(), nil
}

func (s *CalendarStore) ByReference(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := s.ledger.ByReference(ref)
	if err != nil {
		return nil, err
	}
	return res.Snapshot(), nil
}

func (s *CalendarStore) HasReference(ctx context.Context, ref reservation.Reference) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.HasReference(ref)
}

// DrainEvents hands out everything the store collected under its lock:
// aggregate events from commits, confirms and cancels, plus ledger-level
// events (capacity races).
func (s *CalendarStore) DrainEvents() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectLedgerEventsLocked()
	out := s.pending
	s.pending = nil
	return out
}

func (s *CalendarStore) collectAggregateEventsLocked(res *reservation.Reservation) {
	s.pending = append(s.pending, res.PendingEvents()...)
	res.ClearEvents()
}

func (s *CalendarStore) collectLedgerEventsLocked() {
	s.pending = append(s.pending, s.ledger.PendingEvents()...)
	s.ledger.ClearEvents()
}
