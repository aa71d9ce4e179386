// Package handler implements the HTTP handlers for the car rental API.
// All handlers are methods on Server. Methods are split into files by area
// (catalog.go, dates.go, booking.go, admin.go, ...) but share the same Server
// struct so they can access its dependencies. NewRouter mounts them on chi.
package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// DateRangeServicer encodes and decodes the URL date-range token.
//
// Each interface is defined here, in the consumer package, so handler tests
// can inject a mock without touching the database or the service layer.
type DateRangeServicer interface {
	Encode(start, end time.Time) (string, error)
	Decode(token string) (daterange.Decoded, error)
}

// QuoteServicer prices date ranges.
type QuoteServicer interface {
	Classes() []domain.CarClassRate
	QuickBooking(ctx context.Context, start, end time.Time) (service.QuickBookingResult, error)
	Quote(ctx context.Context, token string, class domain.CarClass) (service.QuoteResult, error)
}

// CarServicer serves the public catalog and the admin fleet screens.
type CarServicer interface {
	List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]service.CarListing, error)
	Get(ctx context.Context, id uuid.UUID) (service.CarListing, error)
	Create(ctx context.Context, in service.CarInput) (service.CarListing, error)
	Update(ctx context.Context, id uuid.UUID, in service.CarInput) (service.CarListing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (service.CarListing, error)
}

// BookingServicer submits reservations and backs the admin booking list.
type BookingServicer interface {
	Submit(ctx context.Context, req service.BookingRequest) (service.BookingResult, error)
	List(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) (domain.Page[domain.Booking], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	Export(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
}

// ContactServicer forwards the public contact form.
type ContactServicer interface {
	Send(ctx context.Context, req service.ContactRequest) error
}

// AdminServicer authenticates dashboard operators.
type AdminServicer interface {
	Login(ctx context.Context, username, password string) (string, domain.Session, error)
	Session(token string) (domain.Session, error)
}

// Services bundles every servicer the API needs. Handlers for a nil field
// are still mounted; tests only set what they exercise.
type Services struct {
	Dates    DateRangeServicer
	Quotes   QuoteServicer
	Cars     CarServicer
	Bookings BookingServicer
	Contact  ContactServicer
	Admin    AdminServicer
}

// Server holds the dependencies shared by every handler method.
type Server struct {
	dates    DateRangeServicer
	quotes   QuoteServicer
	cars     CarServicer
	bookings BookingServicer
	contact  ContactServicer
	admin    AdminServicer

	openapi      []byte
	cookieSecure bool
	log          *slog.Logger
}

// ServerOptions tunes the parts of the Server that are not services.
type ServerOptions struct {
	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte
	// CookieSecure sets the Secure flag on the admin session cookie.
	// Leave false only for plain-HTTP local development.
	CookieSecure bool
	Log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts ServerOptions) *Server {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		dates:        svc.Dates,
		quotes:       svc.Quotes,
		cars:         svc.Cars,
		bookings:     svc.Bookings,
		contact:      svc.Contact,
		admin:        svc.Admin,
		openapi:      opts.OpenAPI,
		cookieSecure: opts.CookieSecure,
		log:          log,
	}
}
