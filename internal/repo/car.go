package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// CarRepo defines the persistence operations for the fleet.
type CarRepo interface {
	// Create inserts a car and returns it with DB-generated fields populated.
	Create(ctx context.Context, car domain.Car) (domain.Car, error)

	// GetByID returns domain.ErrNotFound if no car has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error)

	// List returns cars ordered by class tier, then make and model.
	// A nil class lists every class.
	List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]domain.Car, error)

	// Update overwrites the mutable fields. ImageURL is left untouched; use SetImage.
	Update(ctx context.Context, car domain.Car) (domain.Car, error)

	// Delete removes a car. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetImage replaces the image URL and returns the updated car.
	SetImage(ctx context.Context, id uuid.UUID, url string) (domain.Car, error)
}

type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

const carColumns = `id, class, make, model, year, seats, transmission, fuel, image_url, available, created_at, updated_at`

// classOrder sorts economy < standard < premium rather than alphabetically.
const classOrder = `CASE class WHEN 'economy' THEN 1 WHEN 'standard' THEN 2 ELSE 3 END`

func (r *pgCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		INSERT INTO cars (class, make, model, year, seats, transmission, fuel, image_url, available)
		VALUES (@class, @make, @model, @year, @seats, @transmission, @fuel, @image_url, @available)
		RETURNING ` + carColumns

	row := r.db.QueryRow(ctx, q, carArgs(car))
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = @id`

	result, err := scanCar(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]domain.Car, error) {
	b := psql.Select(carColumns).From("cars").OrderBy(classOrder, "make", "model")
	if class != nil {
		b = b.Where("class = ?", string(*class))
	}
	if onlyAvailable {
		b = b.Where("available")
	}

	q, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: build: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: %w", err)
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CarRepo.List: scan: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: rows: %w", err)
	}
	return cars, nil
}

func (r *pgCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		UPDATE cars
		SET class        = @class,
		    make         = @make,
		    model        = @model,
		    year         = @year,
		    seats        = @seats,
		    transmission = @transmission,
		    fuel         = @fuel,
		    available    = @available,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + carColumns

	args := carArgs(car)
	args["id"] = car.ID

	result, err := scanCar(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("repo.CarRepo.Delete: car has bookings: %w", domain.ErrConflict)
		}
		return fmt.Errorf("repo.CarRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgCarRepo) SetImage(ctx context.Context, id uuid.UUID, url string) (domain.Car, error) {
	const q = `
		UPDATE cars SET image_url = @image_url, updated_at = now()
		WHERE id = @id
		RETURNING ` + carColumns

	result, err := scanCar(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "image_url": url}))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.SetImage: %w", err)
	}
	return result, nil
}

func carArgs(car domain.Car) pgx.NamedArgs {
	return pgx.NamedArgs{
		"class":        string(car.Class),
		"make":         car.Make,
		"model":        car.Model,
		"year":         car.Year,
		"seats":        car.Seats,
		"transmission": car.Transmission,
		"fuel":         car.Fuel,
		"image_url":    car.ImageURL,
		"available":    car.Available,
	}
}

func scanCar(s scanner) (domain.Car, error) {
	var (
		c     domain.Car
		id    pgtype.UUID
		class string
	)
	err := s.Scan(&id, &class, &c.Make, &c.Model, &c.Year, &c.Seats, &c.Transmission,
		&c.Fuel, &c.ImageURL, &c.Available, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Car{}, domain.ErrNotFound
		}
		return domain.Car{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.Class = domain.CarClass(class)
	return c, nil
}
