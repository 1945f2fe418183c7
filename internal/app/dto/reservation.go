package dto

import (
	"time"

	"innkeep/internal/app/booking"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/money"
)

const dateLayout = "2006-01-02"

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type AvailabilityDTO struct {
	Available      bool `json:"available"`
	UnitsAvailable int  `json:"units_available"`
	Nights         int  `json:"nights"`
}

type NightRateDTO struct {
	Date string   `json:"date"`
	Rate MoneyDTO `json:"rate"`
}

type QuoteDTO struct {
	CheckIn  string         `json:"check_in"`
	CheckOut string         `json:"check_out"`
	Units    int            `json:"units"`
	Nightly  []NightRateDTO `json:"nightly"`
	Total    MoneyDTO       `json:"total"`
}

type BookingOutcomeDTO struct {
	Available      bool           `json:"available"`
	Reference      string         `json:"reference,omitempty"`
	Status         string         `json:"status,omitempty"`
	Nights         int            `json:"nights"`
	UnitsAvailable int            `json:"units_available,omitempty"`
	Nightly        []NightRateDTO `json:"nightly,omitempty"`
	Total          *MoneyDTO      `json:"total,omitempty"`
	Deposit        *MoneyDTO      `json:"deposit,omitempty"`
}

type ReservationDTO struct {
	Reference string         `json:"reference"`
	CheckIn   string         `json:"check_in"`
	CheckOut  string         `json:"check_out"`
	Units     int            `json:"units"`
	Status    string         `json:"status"`
	Nightly   []NightRateDTO `json:"nightly"`
	Total     MoneyDTO       `json:"total"`
	Deposit   MoneyDTO       `json:"deposit"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapAvailability(a calendar.Availability) AvailabilityDTO {
	return AvailabilityDTO{Available: a.Available, UnitsAvailable: a.UnitsAvailable, Nights: a.Nights}
}

func mapNightly(rates []pricing.NightRate) []NightRateDTO {
	out := make([]NightRateDTO, 0, len(rates))
	for _, nr := range rates {
		out = append(out, NightRateDTO{Date: nr.Date.Format(dateLayout), Rate: MapMoney(nr.Rate)})
	}
	return out
}

func MapQuote(q pricing.Quote) QuoteDTO {
	dto := QuoteDTO{Units: q.Units, Nightly: mapNightly(q.Nightly), Total: MapMoney(q.Total)}
	if len(q.Nightly) > 0 {
		dto.CheckIn = q.Nightly[0].Date.Format(dateLayout)
		dto.CheckOut = q.Nightly[len(q.Nightly)-1].Date.AddDate(0, 0, 1).Format(dateLayout)
	}
	return dto
}

func MapBookingOutcome(r booking.Result) BookingOutcomeDTO {
	dto := BookingOutcomeDTO{
		Available:      r.Available,
		Nights:         r.Nights,
		UnitsAvailable: r.UnitsAvailable,
	}
	if !r.Available {
		return dto
	}
	total := MapMoney(r.Quote.Total)
	deposit := MapMoney(r.Deposit)
	dto.Reference = string(r.Reference)
	dto.Status = string(r.Status)
	dto.Nightly = mapNightly(r.Quote.Nightly)
	dto.Total = &total
	dto.Deposit = &deposit
	return dto
}

func MapReservation(res *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		Reference: string(res.Reference),
		CheckIn:   res.Range.CheckIn.Format(dateLayout),
		CheckOut:  res.Range.CheckOut.Format(dateLayout),
		Units:     res.Units,
		Status:    string(res.Status),
		Nightly:   mapNightly(res.Price.Nightly),
		Total:     MapMoney(res.Price.Total),
		Deposit:   MapMoney(res.Deposit),
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}
