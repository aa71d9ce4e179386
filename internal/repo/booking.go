package repo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// BookingRepo defines the persistence operations for the local booking mirror.
type BookingRepo interface {
	// Create inserts a booking snapshot and returns the persisted record.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID returns domain.ErrNotFound if no booking has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// ListPaged returns one page of bookings matching f, newest pickup first,
	// together with the total number of matching rows.
	ListPaged(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) ([]domain.Booking, int64, error)

	// UpdateStatus sets the lifecycle status and returns the updated record.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, reservation_id, car_id, start_at, end_at, days, daily_rate, total_price,
	currency, client_name, client_phone, client_email, locale, status, created_at, updated_at`

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (reservation_id, car_id, start_at, end_at, days, daily_rate, total_price,
		                      currency, client_name, client_phone, client_email, locale, status)
		VALUES (@reservation_id, @car_id, @start_at, @end_at, @days, @daily_rate, @total_price,
		        @currency, @client_name, @client_phone, @client_email, @locale, @status)
		RETURNING ` + bookingColumns

	status := b.Status
	if status == "" {
		status = domain.BookingPending
	}

	args := pgx.NamedArgs{
		"reservation_id": b.ReservationID,
		"car_id":         b.CarID,
		"start_at":       b.Start,
		"end_at":         b.End,
		"days":           b.Days,
		"daily_rate":     b.DailyRate,
		"total_price":    b.TotalPrice,
		"currency":       b.Currency,
		"client_name":    b.ClientName,
		"client_phone":   b.ClientPhone,
		"client_email":   b.ClientEmail,
		"locale":         b.Locale,
		"status":         string(status),
	}

	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) ListPaged(ctx context.Context, f domain.BookingFilter, p domain.PaginationParams) ([]domain.Booking, int64, error) {
	where := bookingFilter(f)

	countQ, countArgs, err := psql.Select("COUNT(*)").From("bookings").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: count: %w", err)
	}
	if total == 0 {
		return []domain.Booking{}, 0, nil
	}

	q, args, err := psql.Select(bookingColumns).From("bookings").Where(where).
		OrderBy("start_at DESC", "created_at DESC").
		Limit(uint64(p.Limit)).Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: build: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0, p.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListPaged: rows: %w", err)
	}
	return bookings, total, nil
}

func (r *pgBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	const q = `
		UPDATE bookings SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + bookingColumns

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// bookingFilter turns the non-nil filter fields into a WHERE conjunction.
// An empty filter yields an empty And, which squirrel renders as (1=1).
// CarID is passed as a string: squirrel expands array values into IN lists.
func bookingFilter(f domain.BookingFilter) sq.And {
	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": string(*f.Status)})
	}
	if f.CarID != nil {
		where = append(where, sq.Eq{"car_id": f.CarID.String()})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"start_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.Lt{"start_at": *f.To})
	}
	return where
}

func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b      domain.Booking
		id     pgtype.UUID
		carID  pgtype.UUID
		status string
	)
	err := s.Scan(&id, &b.ReservationID, &carID, &b.Start, &b.End, &b.Days, &b.DailyRate, &b.TotalPrice,
		&b.Currency, &b.ClientName, &b.ClientPhone, &b.ClientEmail, &b.Locale, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.ID = uuid.UUID(id.Bytes)
	b.CarID = uuid.UUID(carID.Bytes)
	b.Status = domain.BookingStatus(status)
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return b, nil
}
