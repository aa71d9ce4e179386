package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// QuoteBody is the price breakdown embedded in booking responses.
type QuoteBody struct {
	Days         int     `json:"days"`
	DailyRate    float64 `json:"daily_rate"`
	TotalPrice   float64 `json:"total_price"`
	TotalDisplay string  `json:"total_display"`
	Currency     string  `json:"currency"`
}

// CreateBookingResponse is returned once the booking sheet accepted the reservation.
// BookingID is empty when the local mirror write failed.
type CreateBookingResponse struct {
	ReservationID string    `json:"reservation_id"`
	BookingID     string    `json:"booking_id,omitempty"`
	CarName       string    `json:"car_name"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Quote         QuoteBody `json:"quote"`
}

// BookingResponse is a mirrored booking as shown in the admin dashboard.
type BookingResponse struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	CarID         string    `json:"car_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Days          int       `json:"days"`
	DailyRate     float64   `json:"daily_rate"`
	TotalPrice    float64   `json:"total_price"`
	Currency      string    `json:"currency"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	ClientEmail   string    `json:"client_email"`
	Locale        string    `json:"locale"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateBooking handles POST /api/v1/bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.BookingRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Locale = i18n.FromContext(r.Context())

	res, err := s.bookings.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := CreateBookingResponse{
		ReservationID: res.ReservationID,
		CarName:       res.Car.DisplayName(),
		Start:         res.Range.Start.UTC(),
		End:           res.Range.End.UTC(),
		Quote:         quoteToBody(res.Quote),
	}
	if res.Booking.ID != uuid.Nil {
		out.BookingID = res.Booking.ID.String()
	}
	writeJSON(w, http.StatusCreated, out)
}

// --- mapping helpers --------------------------------------------------------

func quoteToBody(q domain.BookingQuote) QuoteBody {
	return QuoteBody{
		Days:         q.Days,
		DailyRate:    q.DailyRate,
		TotalPrice:   q.TotalPrice,
		TotalDisplay: fmt.Sprintf("%.2f", q.TotalPrice),
		Currency:     q.Currency,
	}
}

func bookingToResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		ReservationID: b.ReservationID,
		CarID:         b.CarID.String(),
		Start:         b.Start.UTC(),
		End:           b.End.UTC(),
		Days:          b.Days,
		DailyRate:     b.DailyRate,
		TotalPrice:    b.TotalPrice,
		Currency:      b.Currency,
		ClientName:    b.ClientName,
		ClientPhone:   b.ClientPhone,
		ClientEmail:   b.ClientEmail,
		Locale:        b.Locale,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.UTC(),
		UpdatedAt:     b.UpdatedAt.UTC(),
	}
}
