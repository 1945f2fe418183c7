package booking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/app/booking"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/events"
	"innkeep/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() pricing.Config {
	return pricing.Config{
		Currency:    "EUR",
		BaseRate:    8500,
		MinimumRate: 5000,
		MaximumRate: 25000,
		PeakMonths:  map[time.Month]struct{}{time.June: {}, time.July: {}, time.August: {}},
		LowMonths:   map[time.Month]struct{}{time.November: {}, time.January: {}, time.February: {}},
	}
}

func newProcessor(t *testing.T, capacity int) (*booking.Processor, *memory.CalendarStore, *memory.Outbox) {
	t.Helper()
	store, err := memory.NewCalendarStore(capacity)
	require.NoError(t, err)
	engine, err := pricing.NewEngine(testConfig())
	require.NoError(t, err)
	box := memory.NewOutbox()

	seq := 0
	return &booking.Processor{
		Store:  store,
		Rates:  engine,
		Outbox: box,
		Now:    func() time.Time { return date(2026, 9, 1) },
		NewReference: func() reservation.Reference {
			seq++
			return reservation.Reference(fmt.Sprintf("INN-TEST-%d", seq))
		},
	}, store, box
}

// mockStore is a hand-written test double for the calendar store. Each
// method is a function field so individual tests override only what they
// need.
type mockStore struct {
	checkAvailability func(ctx context.Context, sr daterange.StayRange, units int) (calendar.Availability, error)
	commitIfAvailable func(ctx context.Context, res *reservation.Reservation, now time.Time) error
	cancel            func(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error)
	confirmDeposit    func(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error)
	byReference       func(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error)
	hasReference      func(ctx context.Context, ref reservation.Reference) bool
	drainEvents       func() []events.DomainEvent
}

func (m *mockStore) CheckAvailability(ctx context.Context, sr daterange.StayRange, units int) (calendar.Availability, error) {
	return m.checkAvailability(ctx, sr, units)
}

func (m *mockStore) CommitIfAvailable(ctx context.Context, res *reservation.Reservation, now time.Time) error {
	return m.commitIfAvailable(ctx, res, now)
}

func (m *mockStore) Cancel(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error) {
	return m.cancel(ctx, ref, now)
}

func (m *mockStore) ConfirmDeposit(ctx context.Context, ref reservation.Reference, now time.Time) (*reservation.Reservation, error) {
	return m.confirmDeposit(ctx, ref, now)
}

func (m *mockStore) ByReference(ctx context.Context, ref reservation.Reference) (*reservation.Reservation, error) {
	return m.byReference(ctx, ref)
}

func (m *mockStore) HasReference(ctx context.Context, ref reservation.Reference) bool {
	return m.hasReference(ctx, ref)
}

func (m *mockStore) DrainEvents() []events.DomainEvent {
	if m.drainEvents == nil {
		return nil
	}
	return m.drainEvents()
}

func TestAttemptBooking_TwoNightWeekend(t *testing.T) {
	proc, store, box := newProcessor(t, 8)
	ctx := context.Background()

	// Friday 2026-09-11 check-in, two weekend nights at 102.00 each.
	result, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, 0.25)

	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 2, result.Nights)
	assert.Equal(t, int64(20400), result.Quote.Total.Amount)
	assert.Equal(t, int64(5100), result.Deposit.Amount)
	assert.Equal(t, reservation.StatusPendingDeposit, result.Status)
	assert.NotEmpty(t, result.Reference)

	assert.Equal(t, 1, store.Occupancy(ctx, date(2026, 9, 11)))
	assert.Equal(t, 1, store.Occupancy(ctx, date(2026, 9, 12)))
	// The commit event landed in the outbox.
	assert.Equal(t, 1, box.Unsent())
}

func TestAttemptBooking_CheckThenCommitIsConsistent(t *testing.T) {
	proc, store, _ := newProcessor(t, 8)
	ctx := context.Background()

	avail, err := proc.CheckAvailability(ctx, date(2026, 9, 11), date(2026, 9, 13), 8)
	require.NoError(t, err)
	require.True(t, avail.Available)

	// Nothing intervened, so the attempt for the same parameters must land.
	result, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 8, 0.25)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 8, store.Occupancy(ctx, date(2026, 9, 11)))
}

func TestAttemptBooking_UnavailableIsAnOutcomeNotAnError(t *testing.T) {
	proc, _, box := newProcessor(t, 2)
	ctx := context.Background()

	first, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 2, 0.25)
	require.NoError(t, err)
	require.True(t, first.Available)

	second, err := proc.AttemptBooking(ctx, date(2026, 9, 12), date(2026, 9, 14), 1, 0.25)
	require.NoError(t, err)
	assert.False(t, second.Available)
	assert.Equal(t, 0, second.UnitsAvailable)
	assert.Empty(t, second.Reference)
	// No reservation, so only the first attempt's event is staged.
	assert.Equal(t, 1, box.Unsent())
}

func TestAttemptBooking_RejectsBadDepositFraction(t *testing.T) {
	proc, _, _ := newProcessor(t, 8)
	ctx := context.Background()

	_, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, 1.01)
	assert.ErrorIs(t, err, reservation.ErrInvalidDepositFraction)

	_, err = proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, -0.1)
	assert.ErrorIs(t, err, reservation.ErrInvalidDepositFraction)
}

func TestAttemptBooking_RejectsInvalidRangeAndUnits(t *testing.T) {
	proc, _, _ := newProcessor(t, 8)
	ctx := context.Background()

	_, err := proc.AttemptBooking(ctx, date(2026, 9, 13), date(2026, 9, 11), 1, 0.25)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 0, 0.25)
	assert.ErrorIs(t, err, reservation.ErrInvalidUnits)
}

func TestAttemptBooking_CapacityRaceSurfacesAsRetryable(t *testing.T) {
	engine, err := pricing.NewEngine(testConfig())
	require.NoError(t, err)
	// The check says yes, but by commit time another booking won the race.
	store := &mockStore{
		checkAvailability: func(ctx context.Context, sr daterange.StayRange, units int) (calendar.Availability, error) {
			return calendar.Availability{Available: true, UnitsAvailable: 1, Nights: sr.Nights()}, nil
		},
		hasReference: func(ctx context.Context, ref reservation.Reference) bool { return false },
		commitIfAvailable: func(ctx context.Context, res *reservation.Reservation, now time.Time) error {
			return calendar.ErrCapacityExceeded
		},
	}
	proc := &booking.Processor{
		Store: store,
		Rates: engine,
		Now:   func() time.Time { return date(2026, 9, 1) },
	}

	_, err = proc.AttemptBooking(context.Background(), date(2026, 9, 11), date(2026, 9, 13), 1, 0.25)
	assert.ErrorIs(t, err, booking.ErrCapacityRace)
}

func TestAttemptBooking_GivesUpAfterReferenceCollisions(t *testing.T) {
	proc, store, _ := newProcessor(t, 8)
	ctx := context.Background()

	first, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, 0.25)
	require.NoError(t, err)

	// Every generated reference collides with the existing booking.
	proc.NewReference = func() reservation.Reference { return first.Reference }

	_, err = proc.AttemptBooking(ctx, date(2026, 10, 1), date(2026, 10, 3), 1, 0.25)
	assert.ErrorIs(t, err, booking.ErrReferenceCollisionExhausted)
	assert.Equal(t, 0, store.Occupancy(ctx, date(2026, 10, 1)))
}

func TestConfirmDeposit_Lifecycle(t *testing.T) {
	proc, _, box := newProcessor(t, 8)
	ctx := context.Background()

	result, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, 0.25)
	require.NoError(t, err)

	res, err := proc.ConfirmDeposit(ctx, result.Reference)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, res.Status)
	assert.Equal(t, 2, box.Unsent())

	_, err = proc.ConfirmDeposit(ctx, result.Reference)
	assert.ErrorIs(t, err, reservation.ErrInvalidState)
}

func TestCancelBooking_ReleasesAndStaysIdempotent(t *testing.T) {
	proc, store, box := newProcessor(t, 1)
	ctx := context.Background()

	result, err := proc.AttemptBooking(ctx, date(2026, 9, 11), date(2026, 9, 13), 1, 0.25)
	require.NoError(t, err)

	require.NoError(t, proc.CancelBooking(ctx, result.Reference))
	assert.Equal(t, 0, store.Occupancy(ctx, date(2026, 9, 11)))
	assert.Equal(t, 2, box.Unsent())

	// Repeating the cancel neither errors nor emits another event.
	require.NoError(t, proc.CancelBooking(ctx, result.Reference))
	assert.Equal(t, 2, box.Unsent())

	assert.ErrorIs(t, proc.CancelBooking(ctx, "INN-MISSING"), reservation.ErrNotFound)
}

func TestQuote_DoesNotTouchTheCalendar(t *testing.T) {
	proc, store, _ := newProcessor(t, 8)
	ctx := context.Background()

	quote, err := proc.Quote(ctx, date(2026, 9, 11), date(2026, 9, 13), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(40800), quote.Total.Amount)
	assert.Equal(t, 0, store.Occupancy(ctx, date(2026, 9, 11)))
}

func TestDefaultReference_Shape(t *testing.T) {
	ref := string(booking.DefaultReference())
	require.Len(t, ref, 14)
	assert.Equal(t, "INN-", ref[:4])
	assert.NotEqual(t, booking.DefaultReference(), booking.DefaultReference())
}
