package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/backend/internal/catalog"
	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/integrations/sheets"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/repo"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// Each mock is a set of function fields; tests set only what they call.

type mockCarRepo struct {
	create   func(ctx context.Context, car domain.Car) (domain.Car, error)
	getByID  func(ctx context.Context, id uuid.UUID) (domain.Car, error)
	list     func(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]domain.Car, error)
	update   func(ctx context.Context, car domain.Car) (domain.Car, error)
	delete   func(ctx context.Context, id uuid.UUID) error
	setImage func(ctx context.Context, id uuid.UUID, url string) (domain.Car, error)
}

var _ repo.CarRepo = (*mockCarRepo)(nil)

func (m *mockCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.create(ctx, car)
}
func (m *mockCarRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarRepo) List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]domain.Car, error) {
	return m.list(ctx, class, onlyAvailable)
}
func (m *mockCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.update(ctx, car)
}
func (m *mockCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockCarRepo) SetImage(ctx context.Context, id uuid.UUID, url string) (domain.Car, error) {
	return m.setImage(ctx, id, url)
}

type mockBookingRepo struct {
	create       func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	listPaged    func(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) ([]domain.Booking, int64, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) ListPaged(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) ([]domain.Booking, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	return m.updateStatus(ctx, id, status)
}

type mockAdminRepo struct {
	getByUsername func(ctx context.Context, username string) (domain.AdminUser, error)
	create        func(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error)
}

var _ repo.AdminRepo = (*mockAdminRepo)(nil)

func (m *mockAdminRepo) GetByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	return m.getByUsername(ctx, username)
}
func (m *mockAdminRepo) Create(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	return m.create(ctx, u)
}

type mockSheet struct {
	createReservation func(ctx context.Context, r sheets.Reservation) (string, error)
}

var _ service.ReservationCreator = (*mockSheet)(nil)

func (m *mockSheet) CreateReservation(ctx context.Context, r sheets.Reservation) (string, error) {
	return m.createReservation(ctx, r)
}

// mockMailer records every message it is asked to send.
type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	template string
	params   map[string]string
}

var _ service.Mailer = (*mockMailer)(nil)

func (m *mockMailer) Send(_ context.Context, templateID string, params map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{template: templateID, params: params})
	return m.err
}

type mockImages struct {
	put      func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	deleted  []string
	maxBytes int64
}

var _ service.ImageStore = (*mockImages)(nil)

func (m *mockImages) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	return m.put(ctx, key, body, size, contentType)
}
func (m *mockImages) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}
func (m *mockImages) KeyFromURL(u string) (string, bool) {
	const prefix = "https://cdn.test/"
	if len(u) > len(prefix) && u[:len(prefix)] == prefix {
		return u[len(prefix):], true
	}
	return "", false
}
func (m *mockImages) MaxBytes() int64 { return m.maxBytes }

type countingRecorder struct {
	mu      sync.Mutex
	results []string
}

func (c *countingRecorder) BookingSubmitted(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// ---- shared fixtures -------------------------------------------------------

var (
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))

	// now is the fixed clock reading for every service test.
	now      = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	fixedNow = pricing.ClockFunc(func() time.Time { return now })
)

func sofia(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Sofia")
	require.NoError(t, err)
	return loc
}

func policies(t *testing.T) service.Policies {
	return service.Policies{
		QuickBooking: pricing.Policy{MinimumDays: 5, DisallowSameCalendarDay: true, Location: sofia(t)},
		Wizard:       pricing.Policy{MinimumDays: 1},
	}
}

func rates(t *testing.T) *catalog.RateTable {
	t.Helper()
	rt, err := catalog.Load()
	require.NoError(t, err)
	return rt
}

func dates() *service.DateRangeService {
	return service.NewDateRangeService(daterange.NewCodec(discard, nil))
}

func economyCar() domain.Car {
	return domain.Car{
		ID:        uuid.MustParse("11111111-2222-4333-8444-555555555555"),
		Class:     domain.ClassEconomy,
		Make:      "Dacia",
		Model:     "Sandero",
		Available: true,
	}
}
