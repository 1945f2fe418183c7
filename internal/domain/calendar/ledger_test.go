package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(t *testing.T, checkIn, checkOut time.Time) daterange.StayRange {
	t.Helper()
	sr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return sr
}

func newReservation(t *testing.T, ref string, sr daterange.StayRange, units int) *reservation.Reservation {
	t.Helper()
	res, err := reservation.New(reservation.CreateParams{
		Reference: reservation.Reference(ref),
		Range:     sr,
		Units:     units,
		Price:     pricing.Quote{Units: units, Total: money.Must(10000, "EUR")},
		Deposit:   money.Must(2500, "EUR"),
		CreatedAt: date(2026, 9, 1),
	})
	require.NoError(t, err)
	return res
}

func newLedger(t *testing.T, capacity int) *calendar.Ledger {
	t.Helper()
	ledger, err := calendar.NewLedger(capacity)
	require.NoError(t, err)
	return ledger
}

func TestNewLedger_RejectsZeroCapacity(t *testing.T) {
	_, err := calendar.NewLedger(0)
	assert.ErrorIs(t, err, calendar.ErrInvalidCapacity)
}

func TestOccupancy_EmptyDateIsZero(t *testing.T) {
	ledger := newLedger(t, 8)
	assert.Equal(t, 0, ledger.Occupancy(date(2026, 9, 11)))
}

func TestCommit_IndexesEveryNight(t *testing.T) {
	ledger := newLedger(t, 8)
	res := newReservation(t, "INN-A", stay(t, date(2026, 9, 11), date(2026, 9, 14)), 3)

	require.NoError(t, ledger.Commit(res, date(2026, 9, 1)))

	assert.Equal(t, 3, ledger.Occupancy(date(2026, 9, 11)))
	assert.Equal(t, 3, ledger.Occupancy(date(2026, 9, 12)))
	assert.Equal(t, 3, ledger.Occupancy(date(2026, 9, 13)))
	// Check-out day is free for the next guest.
	assert.Equal(t, 0, ledger.Occupancy(date(2026, 9, 14)))
}

func TestCheck_WeakestNightCapsTheRange(t *testing.T) {
	ledger := newLedger(t, 8)
	// One tight night in the middle of an otherwise free week.
	res := newReservation(t, "INN-A", stay(t, date(2026, 9, 12), date(2026, 9, 13)), 6)
	require.NoError(t, ledger.Commit(res, date(2026, 9, 1)))

	avail, err := ledger.Check(stay(t, date(2026, 9, 10), date(2026, 9, 15)), 3)

	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, 2, avail.UnitsAvailable)
	assert.Equal(t, 5, avail.Nights)
}

func TestCheck_UnitsAboveCapacityNeverAvailable(t *testing.T) {
	ledger := newLedger(t, 8)

	avail, err := ledger.Check(stay(t, date(2026, 9, 11), date(2026, 9, 13)), 9)

	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, 8, avail.UnitsAvailable)
}

func TestCheck_RejectsZeroUnits(t *testing.T) {
	ledger := newLedger(t, 8)
	_, err := ledger.Check(stay(t, date(2026, 9, 11), date(2026, 9, 13)), 0)
	assert.ErrorIs(t, err, reservation.ErrInvalidUnits)
}

func TestCommit_FailsWhenCapacityGone(t *testing.T) {
	ledger := newLedger(t, 8)
	first := newReservation(t, "INN-A", stay(t, date(2026, 9, 11), date(2026, 9, 13)), 6)
	require.NoError(t, ledger.Commit(first, date(2026, 9, 1)))

	second := newReservation(t, "INN-B", stay(t, date(2026, 9, 12), date(2026, 9, 14)), 3)
	err := ledger.Commit(second, date(2026, 9, 1))

	assert.ErrorIs(t, err, calendar.ErrCapacityExceeded)
	// A failed commit must leave the ledger untouched on every night.
	assert.Equal(t, 0, ledger.Occupancy(date(2026, 9, 13)))
	assert.False(t, ledger.HasReference("INN-B"))
}

func TestCommit_RecordsCapacityRaceEvent(t *testing.T) {
	ledger := newLedger(t, 2)
	first := newReservation(t, "INN-A", stay(t, date(2026, 9, 11), date(2026, 9, 13)), 2)
	require.NoError(t, ledger.Commit(first, date(2026, 9, 1)))

	second := newReservation(t, "INN-B", stay(t, date(2026, 9, 11), date(2026, 9, 13)), 1)
	require.ErrorIs(t, ledger.Commit(second, date(2026, 9, 1)), calendar.ErrCapacityExceeded)

	pending := ledger.PendingEvents()
	require.Len(t, pending, 1)
	assert.Equal(t, "calendar.capacity_race_prevented", pending[0].EventName())
}

func TestCommit_RejectsDuplicateReference(t *testing.T) {
	ledger := newLedger(t, 8)
	res := newReservation(t, "INN-A", stay(t, date(2026, 9, 11), date(2026, 9, 13)), 1)
	require.NoError(t, ledger.Commit(res, date(2026, 9, 1)))

	dup := newReservation(t, "INN-A", stay(t, date(2026, 10, 1), date(2026, 10, 3)), 1)
	assert.ErrorIs(t, ledger.Commit(dup, date(2026, 9, 1)), calendar.ErrReferenceExists)
}

func TestCancel_ReleasesCapacity(t *testing.T) {
	ledger := newLedger(t, 8)
	sr := stay(t, date(2026, 9, 11), date(2026, 9, 13))
	res := newReservation(t, "INN-A", sr, 8)
	require.NoError(t, ledger.Commit(res, date(2026, 9, 1)))

	full, err := ledger.Check(sr, 1)
	require.NoError(t, err)
	require.False(t, full.Available)

	_, err = ledger.Cancel("INN-A", date(2026, 9, 2))
	require.NoError(t, err)

	freed, err := ledger.Check(sr, 8)
	require.NoError(t, err)
	assert.True(t, freed.Available)
	assert.Equal(t, 8, freed.UnitsAvailable)
}

func TestCancel_Idempotent(t *testing.T) {
	ledger := newLedger(t, 8)
	res := newReservation(t, "INN-A", stay(t, date(2026, 9, 11), date(2026, 9, 13)), 2)
	require.NoError(t, ledger.Commit(res, date(2026, 9, 1)))

	first, err := ledger.Cancel("INN-A", date(2026, 9, 2))
	require.NoError(t, err)
	require.Equal(t, reservation.StatusCancelled, first.Status)

	again, err := ledger.Cancel("INN-A", date(2026, 9, 3))
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, again.Status)
	// The repeated cancel must not move UpdatedAt or emit another event.
	assert.Equal(t, first.UpdatedAt, again.UpdatedAt)
}

func TestCancel_UnknownReference(t *testing.T) {
	ledger := newLedger(t, 8)
	_, err := ledger.Cancel("INN-MISSING", date(2026, 9, 2))
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}
