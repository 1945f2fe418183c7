package calendar

import (
	"time"

	"innkeep/internal/domain/shared/daterange"
)

// CapacityRacePrevented is recorded when the commit-time re-check finds
// the capacity a prior availability read promised has since been taken.
type CapacityRacePrevented struct {
	Range          daterange.StayRange
	Units          int
	UnitsAvailable int
	At             time.Time
}

func (e CapacityRacePrevented) EventName() string     { return "calendar.capacity_race_prevented" }
func (e CapacityRacePrevented) AggregateID() string   { return "calendar" }
func (e CapacityRacePrevented) OccurredAt() time.Time { return e.At }
