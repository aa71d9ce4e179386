package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/handler"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// Each mock is a test double for one handler servicer.
// Set only the method fields your test needs.

type mockDates struct {
	encode func(start, end time.Time) (string, error)
	decode func(token string) (daterange.Decoded, error)
}

func (m *mockDates) Encode(start, end time.Time) (string, error) { return m.encode(start, end) }
func (m *mockDates) Decode(token string) (daterange.Decoded, error) {
	return m.decode(token)
}

type mockQuotes struct {
	classes      func() []domain.CarClassRate
	quickBooking func(ctx context.Context, start, end time.Time) (service.QuickBookingResult, error)
	quote        func(ctx context.Context, token string, class domain.CarClass) (service.QuoteResult, error)
}

func (m *mockQuotes) Classes() []domain.CarClassRate { return m.classes() }
func (m *mockQuotes) QuickBooking(ctx context.Context, start, end time.Time) (service.QuickBookingResult, error) {
	return m.quickBooking(ctx, start, end)
}
func (m *mockQuotes) Quote(ctx context.Context, token string, class domain.CarClass) (service.QuoteResult, error) {
	return m.quote(ctx, token, class)
}

type mockCars struct {
	list        func(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]service.CarListing, error)
	get         func(ctx context.Context, id uuid.UUID) (service.CarListing, error)
	create      func(ctx context.Context, in service.CarInput) (service.CarListing, error)
	update      func(ctx context.Context, id uuid.UUID, in service.CarInput) (service.CarListing, error)
	delete      func(ctx context.Context, id uuid.UUID) error
	uploadImage func(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (service.CarListing, error)
}

func (m *mockCars) List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]service.CarListing, error) {
	return m.list(ctx, class, onlyAvailable)
}
func (m *mockCars) Get(ctx context.Context, id uuid.UUID) (service.CarListing, error) {
	return m.get(ctx, id)
}
func (m *mockCars) Create(ctx context.Context, in service.CarInput) (service.CarListing, error) {
	return m.create(ctx, in)
}
func (m *mockCars) Update(ctx context.Context, id uuid.UUID, in service.CarInput) (service.CarListing, error) {
	return m.update(ctx, id, in)
}
func (m *mockCars) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }
func (m *mockCars) UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (service.CarListing, error) {
	return m.uploadImage(ctx, id, body, size, contentType)
}

type mockBookings struct {
	submit       func(ctx context.Context, req service.BookingRequest) (service.BookingResult, error)
	list         func(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) (domain.Page[domain.Booking], error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	export       func(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
}

func (m *mockBookings) Submit(ctx context.Context, req service.BookingRequest) (service.BookingResult, error) {
	return m.submit(ctx, req)
}
func (m *mockBookings) List(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	return m.list(ctx, f, p)
}
func (m *mockBookings) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockBookings) Export(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	return m.export(ctx, f)
}

type mockContact struct {
	send func(ctx context.Context, req service.ContactRequest) error
}

func (m *mockContact) Send(ctx context.Context, req service.ContactRequest) error {
	return m.send(ctx, req)
}

type mockAdmin struct {
	login   func(ctx context.Context, username, password string) (string, domain.Session, error)
	session func(token string) (domain.Session, error)
}

func (m *mockAdmin) Login(ctx context.Context, username, password string) (string, domain.Session, error) {
	return m.login(ctx, username, password)
}
func (m *mockAdmin) Session(token string) (domain.Session, error) { return m.session(token) }

// compile-time checks: every mock must satisfy its servicer interface.
var (
	_ handler.DateRangeServicer = (*mockDates)(nil)
	_ handler.QuoteServicer     = (*mockQuotes)(nil)
	_ handler.CarServicer       = (*mockCars)(nil)
	_ handler.BookingServicer   = (*mockBookings)(nil)
	_ handler.ContactServicer   = (*mockContact)(nil)
	_ handler.AdminServicer     = (*mockAdmin)(nil)
)

// ---- helpers ---------------------------------------------------------------

const adminToken = "valid-admin-token"

var expiresAt = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

// adminSessions accepts adminToken and rejects everything else.
func adminSessions() *mockAdmin {
	return &mockAdmin{
		session: func(token string) (domain.Session, error) {
			if token != adminToken {
				return domain.Session{}, domain.ErrUnauthorized
			}
			return domain.Session{LoggedIn: true, Username: "owner", ExpiresAt: expiresAt}, nil
		},
	}
}

// newHTTPHandler wires a Server with the given mocks into the real router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	if svc.Admin == nil {
		svc.Admin = adminSessions()
	}
	srv := handler.NewServer(svc, handler.ServerOptions{OpenAPI: []byte("openapi: 3.0.3\n")})
	return handler.NewRouter(srv, handler.RouterOptions{
		CORSOrigins:   []string{"http://localhost:5173"},
		MaxBodyBytes:  1 << 10,
		MaxImageBytes: 2 << 10,
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// serve sends req through h and returns the recorded response.
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// asAdmin authenticates req with the bearer token adminSessions accepts.
func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func economyRate() domain.CarClassRate {
	return domain.CarClassRate{
		Class:     domain.ClassEconomy,
		Names:     map[string]string{"bg": "Икономичен", "en": "Economy"},
		DailyRate: 30,
		Currency:  "EUR",
	}
}

func carFixture() service.CarListing {
	return service.CarListing{
		Car: domain.Car{
			ID:           uuid.MustParse("11111111-2222-4333-8444-555555555555"),
			Class:        domain.ClassEconomy,
			Make:         "Dacia",
			Model:        "Sandero",
			Year:         2022,
			Seats:        5,
			Transmission: "manual",
			Fuel:         "petrol",
			Available:    true,
		},
		Rate: economyRate(),
	}
}

func bookingFixture() domain.Booking {
	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return domain.Booking{
		ID:            uuid.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"),
		ReservationID: "R-1042",
		CarID:         carFixture().ID,
		Start:         start,
		End:           start.AddDate(0, 0, 5),
		Days:          5,
		DailyRate:     30,
		TotalPrice:    150,
		Currency:      "EUR",
		ClientName:    "Ivan Petrov",
		ClientPhone:   "+359888123456",
		ClientEmail:   "ivan@example.bg",
		Locale:        "bg",
		Status:        domain.BookingPending,
		CreatedAt:     start.AddDate(0, 0, -10),
		UpdatedAt:     start.AddDate(0, 0, -10),
	}
}
