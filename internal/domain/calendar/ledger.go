package calendar

import (
	"errors"
	"time"

	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
)

var (
	ErrInvalidCapacity  = errors.New("calendar: total capacity must be at least 1")
	ErrCapacityExceeded = errors.New("calendar: not enough free units for the requested range")
	ErrReferenceExists  = errors.New("calendar: reference already committed")
)

// Availability is the outcome of a range check. UnitsAvailable is the
// minimum free capacity across all nights, so a single tight night caps
// the whole range.
type Availability struct {
	Available      bool
	UnitsAvailable int
	Nights         int
}

// Ledger is the per-date occupancy index: every night maps to the
// reservations covering it. The ledger itself is not safe for concurrent
// use; the calendar store serializes all access to it.
type Ledger struct {
	capacity int
	byDate   map[time.Time]map[reservation.Reference]*reservation.Reservation
	byRef    map[reservation.Reference]*reservation.Reservation
	events.EventRecorder
}

func NewLedger(totalCapacity int) (*Ledger, error) {
	if totalCapacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Ledger{
		capacity: totalCapacity,
		byDate:   make(map[time.Time]map[reservation.Reference]*reservation.Reservation),
		byRef:    make(map[reservation.Reference]*reservation.Reservation),
	}, nil
}

func (l *Ledger) Capacity() int {
	return l.capacity
}

// Occupancy sums the units of all non-cancelled reservations covering the
// date. Dates with no reservations occupy zero units.
func (l *Ledger) Occupancy(date time.Time) int {
	occupied := 0
	for _, res := range l.byDate[daterange.Day(date)] {
		if res.Active() {
			occupied += res.Units
		}
	}
	return occupied
}

// Check computes the availability of a range for the requested units.
// Read-only; safe to call repeatedly for quoting.
func (l *Ledger) Check(sr daterange.StayRange, units int) (Availability, error) {
	if err := sr.Validate(); err != nil {
		return Availability{}, err
	}
	if units < 1 {
		return Availability{}, reservation.ErrInvalidUnits
	}
	free := l.capacity
	for _, night := range sr.Dates() {
		if nightFree := l.capacity - l.Occupancy(night); nightFree < free {
			free = nightFree
		}
	}
	return Availability{
		Available:      free >= units,
		UnitsAvailable: free,
		Nights:         sr.Nights(),
	}, nil
}

// Commit re-checks capacity and indexes the reservation under every night
// of its range. All nights are applied or none: the re-check precedes any
// mutation, so a failed commit leaves the ledger untouched. The caller
// must hold the store's write guard across the whole call.
func (l *Ledger) Commit(res *reservation.Reservation, now time.Time) error {
	if _, exists := l.byRef[res.Reference]; exists {
		return ErrReferenceExists
	}
	avail, err := l.Check(res.Range, res.Units)
	if err != nil {
		return err
	}
	if !avail.Available {
		l.Record(CapacityRacePrevented{Range: res.Range, Units: res.Units, UnitsAvailable: avail.UnitsAvailable, At: now.UTC()})
		return ErrCapacityExceeded
	}
	for _, night := range res.Range.Dates() {
		day, ok := l.byDate[night]
		if !ok {
			day = make(map[reservation.Reference]*reservation.Reservation)
			l.byDate[night] = day
		}
		day[res.Reference] = res
	}
	l.byRef[res.Reference] = res
	return nil
}

// Cancel marks a reservation cancelled, releasing its capacity for
// subsequent checks. Cancelling an already-cancelled reference is a no-op.
func (l *Ledger) Cancel(ref reservation.Reference, now time.Time) (*reservation.Reservation, error) {
	res, ok := l.byRef[ref]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	res.Cancel(now)
	return res, nil
}

func (l *Ledger) ByReference(ref reservation.Reference) (*reservation.Reservation, error) {
	res, ok := l.byRef[ref]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return res, nil
}

func (l *Ledger) HasReference(ref reservation.Reference) bool {
	_, ok := l.byRef[ref]
	return ok
}
