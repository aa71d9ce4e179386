package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/integrations/sheets"
	"github.com/pkordes/car-rental/backend/internal/metrics"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/repo"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// Message keys raised by BookingService.
const (
	MsgCarNotFound    = "booking.car_not_found"
	MsgCarUnavailable = "booking.car_unavailable"
	MsgBookingFailed  = "booking.failed"
)

// ReservationCreator is the booking sheet endpoint.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, r sheets.Reservation) (string, error)
}

// BookingCounter records submission outcomes. *metrics.Metrics satisfies it.
type BookingCounter interface {
	BookingSubmitted(result string)
}

// BookingRequest is the final wizard submission. Either Dates (the URL token)
// or both Start and End must be set; explicit instants win.
type BookingRequest struct {
	Dates       string     `json:"dates"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	CarID       string     `json:"car_id" validate:"required,uuid"`
	ClientName  string     `json:"client_name" validate:"required,min=2,max=100"`
	ClientPhone string     `json:"client_phone" validate:"required,phone"`
	ClientEmail string     `json:"client_email" validate:"required,email,max=254"`
	Locale      string     `json:"-"`
}

// BookingResult is returned after the sheet accepted the reservation.
// Booking is the zero value when the local mirror write failed.
type BookingResult struct {
	ReservationID string
	Booking       domain.Booking
	Car           domain.Car
	Quote         domain.BookingQuote
	Range         domain.DateRange
}

// BookingService submits reservations and backs the admin booking screens.
type BookingService struct {
	dates    *DateRangeService
	cars     repo.CarRepo
	bookings repo.BookingRepo
	rates    RateLookup
	sheet    ReservationCreator
	notifier *Notifier
	clock    pricing.Clock
	policy   pricing.Policy
	counter  BookingCounter
	log      *slog.Logger
}

// BookingDeps groups BookingService's collaborators.
type BookingDeps struct {
	Dates    *DateRangeService
	Cars     repo.CarRepo
	Bookings repo.BookingRepo
	Rates    RateLookup
	Sheet    ReservationCreator
	Notifier *Notifier
	Clock    pricing.Clock
	// Policy is the wizard policy applied to every submission.
	Policy  pricing.Policy
	Counter BookingCounter
	Log     *slog.Logger
}

// NewBookingService constructs a BookingService from deps.
func NewBookingService(deps BookingDeps) *BookingService {
	counter := deps.Counter
	if counter == nil {
		counter = (*metrics.Metrics)(nil)
	}
	return &BookingService{
		dates:    deps.Dates,
		cars:     deps.Cars,
		bookings: deps.Bookings,
		rates:    deps.Rates,
		sheet:    deps.Sheet,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		policy:   deps.Policy,
		counter:  counter,
		log:      deps.Log,
	}
}

// Submit validates req, reserves the car on the booking sheet, mirrors the
// booking locally, and sends the confirmation emails.
//
// Only the sheet call can fail the request once validation passes. There is
// no retry and no de-duplication; a second submit books twice.
func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (BookingResult, error) {
	r, carID, err := s.validate(req)
	if err != nil {
		s.counter.BookingSubmitted(metrics.BookingRejected)
		return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w", err)
	}

	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		s.counter.BookingSubmitted(metrics.BookingRejected)
		if errors.Is(err, domain.ErrNotFound) {
			return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w",
				domain.NewMessageError(domain.ErrNotFound, MsgCarNotFound))
		}
		return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w", err)
	}
	if !car.Available {
		s.counter.BookingSubmitted(metrics.BookingRejected)
		return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w",
			domain.NewMessageError(domain.ErrUnavailable, MsgCarUnavailable))
	}

	rate, err := s.rates.Lookup(car.Class)
	if err != nil {
		return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w", err)
	}
	quote := pricing.Quote(r, rate)

	name := strings.TrimSpace(req.ClientName)
	phone := validation.NormalizePhone(req.ClientPhone)
	email := strings.TrimSpace(req.ClientEmail)

	reservationID, err := s.sheet.CreateReservation(ctx,
		sheets.NewReservation(car.ID.String(), r.Start, r.End, name, phone, email))
	if err != nil {
		s.counter.BookingSubmitted(metrics.BookingUpstream)
		s.log.ErrorContext(ctx, "booking sheet call failed", "car_id", car.ID, "error", err)
		return BookingResult{}, fmt.Errorf("service.BookingService.Submit: %w: %w",
			domain.NewMessageError(domain.ErrUpstream, MsgBookingFailed), err)
	}

	b := domain.Booking{
		ReservationID: reservationID,
		CarID:         car.ID,
		Start:         r.Start,
		End:           r.End,
		Days:          quote.Days,
		DailyRate:     quote.DailyRate,
		TotalPrice:    quote.TotalPrice,
		Currency:      quote.Currency,
		ClientName:    name,
		ClientPhone:   phone,
		ClientEmail:   email,
		Locale:        localeOrDefault(req.Locale),
		Status:        domain.BookingPending,
	}

	mirrored, err := s.bookings.Create(ctx, b)
	if err != nil {
		s.counter.BookingSubmitted(metrics.BookingMirrorErr)
		s.log.ErrorContext(ctx, "booking mirror write failed", "reservation_id", reservationID, "error", err)
	} else {
		s.counter.BookingSubmitted(metrics.BookingOK)
		b = mirrored
	}

	s.notifier.BookingPlaced(ctx, b, car)

	res := BookingResult{ReservationID: reservationID, Car: car, Quote: quote, Range: r}
	if err == nil {
		res.Booking = mirrored
	}
	return res, nil
}

func (s *BookingService) validate(req BookingRequest) (domain.DateRange, uuid.UUID, error) {
	var verr *validation.Error
	if err := validation.Struct(req); err != nil {
		if !errors.As(err, &verr) {
			return domain.DateRange{}, uuid.Nil, err
		}
	}

	var r domain.DateRange
	switch {
	case req.Start != nil && req.End != nil:
		r = domain.DateRange{Start: req.Start.UTC(), End: req.End.UTC()}
	case req.Dates != "":
		d, err := s.dates.Decode(req.Dates)
		if err != nil {
			return domain.DateRange{}, uuid.Nil, err
		}
		r = d.DateRange
	default:
		if verr == nil {
			verr = &validation.Error{}
		}
		verr.Add("dates", "validation.required")
	}
	if verr != nil {
		return domain.DateRange{}, uuid.Nil, verr
	}

	if err := s.policy.Check(r); err != nil {
		return domain.DateRange{}, uuid.Nil, err
	}
	if !pricing.IsValidRange(r.Start, r.End, s.clock) {
		return domain.DateRange{}, uuid.Nil, domain.NewMessageError(domain.ErrValidation, MsgInvalidRange)
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return domain.DateRange{}, uuid.Nil, fmt.Errorf("%w: car_id: %v", domain.ErrValidation, err)
	}
	return r, carID, nil
}

// List returns one page of mirrored bookings for the admin dashboard.
func (s *BookingService) List(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	items, total, err := s.bookings.ListPaged(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Booking]{}, fmt.Errorf("service.BookingService.List: %w", err)
	}
	return domain.Page[domain.Booking]{Items: items, Total: total, PaginationParams: p}, nil
}

// UpdateStatus moves a booking to status.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	b, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", err)
	}
	s.log.InfoContext(ctx, "booking status changed", "booking_id", id, "status", status)
	return b, nil
}

// Export returns every booking matching f, paging through the repo.
func (s *BookingService) Export(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	var all []domain.Booking
	p := domain.PaginationParams{Page: 1, Limit: domain.MaxPageLimit}
	for {
		items, total, err := s.bookings.ListPaged(ctx, f, p)
		if err != nil {
			return nil, fmt.Errorf("service.BookingService.Export: %w", err)
		}
		all = append(all, items...)
		if len(items) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		p.Page++
	}
}

// localeOrDefault keeps unknown locales out of the mirror.
func localeOrDefault(lang string) string {
	if lang == i18n.English {
		return i18n.English
	}
	return i18n.Default
}
