package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateRange is a pickup/return pair. It is built transiently from user input;
// only its encoded token form crosses page boundaries.
// Nothing about the type enforces Start < End; validation is layered on top.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// BookingQuote is the derived price for a DateRange and a CarClassRate.
// It is recomputed on every request and never persisted on its own.
type BookingQuote struct {
	Days       int
	DailyRate  float64
	TotalPrice float64
	Currency   string
}

// BookingStatus is the lifecycle state of a booking as tracked by the admin dashboard.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ParseBookingStatus validates s against the known statuses.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
}

// Booking is the local mirror of a reservation accepted by the booking sheet.
// ReservationID is the identifier the sheet returned; ID is ours.
// Price fields are a snapshot taken at submission time.
type Booking struct {
	ID            uuid.UUID
	ReservationID string
	CarID         uuid.UUID
	Start         time.Time
	End           time.Time
	Days          int
	DailyRate     float64
	TotalPrice    float64
	Currency      string
	ClientName    string
	ClientPhone   string
	ClientEmail   string
	Locale        string
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookingFilter narrows the admin booking list. Nil fields are not applied.
// From/To match bookings whose pickup falls inside [From, To).
type BookingFilter struct {
	Status *BookingStatus
	CarID  *uuid.UUID
	From   *time.Time
	To     *time.Time
}
