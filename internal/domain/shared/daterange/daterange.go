package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// StayRange represents a half-open interval of nights [checkIn, checkOut).
// Both bounds are normalized to midnight UTC; a stay is always a whole
// number of nights.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (StayRange, error) {
	sr := StayRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := sr.Validate(); err != nil {
		return StayRange{}, err
	}
	return sr, nil
}

// Day truncates a timestamp to its calendar date at midnight UTC. Ledger
// keys and pricing dates go through this normalization so that timezone
// offsets in caller input cannot split a single night in two.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (sr StayRange) Validate() error {
	if sr.CheckIn.IsZero() || sr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !sr.CheckOut.After(sr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (sr StayRange) Nights() int {
	return int(sr.CheckOut.Sub(sr.CheckIn).Hours() / 24)
}

// Dates returns every night of the stay in order, check-out excluded.
func (sr StayRange) Dates() []time.Time {
	nights := sr.Nights()
	if nights <= 0 {
		return nil
	}
	out := make([]time.Time, 0, nights)
	for d := sr.CheckIn; d.Before(sr.CheckOut); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (sr StayRange) Overlaps(other StayRange) bool {
	return sr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(sr.CheckOut)
}

func (sr StayRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return (t.Equal(sr.CheckIn) || t.After(sr.CheckIn)) && t.Before(sr.CheckOut)
}
