package reservation

import (
	"time"

	"innkeep/internal/domain/shared/daterange"
	"innkeep/internal/domain/shared/money"
)

type Committed struct {
	Reference Reference
	Range     daterange.StayRange
	Units     int
	Total     money.Money
	Deposit   money.Money
	At        time.Time
}

func (e Committed) EventName() string     { return "reservation.committed" }
func (e Committed) AggregateID() string   { return string(e.Reference) }
func (e Committed) OccurredAt() time.Time { return e.At }

type DepositConfirmed struct {
	Reference Reference
	At        time.Time
}

func (e DepositConfirmed) EventName() string     { return "reservation.deposit_confirmed" }
func (e DepositConfirmed) AggregateID() string   { return string(e.Reference) }
func (e DepositConfirmed) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	Reference Reference
	Range     daterange.StayRange
	Units     int
	At        time.Time
}

func (e Cancelled) EventName() string     { return "reservation.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.Reference) }
func (e Cancelled) OccurredAt() time.Time { return e.At }
