package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/repo"
	"github.com/pkordes/car-rental/backend/internal/storage"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// ErrStorageDisabled is returned by UploadImage when no bucket is configured.
var ErrStorageDisabled = errors.New("image storage disabled")

// Message keys for image uploads.
const (
	MsgStorageDisabled = "storage.disabled"
	MsgUnsupportedType = "storage.unsupported_type"
)

// ImageStore is the object storage CarService writes photos to.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(u string) (string, bool)
	MaxBytes() int64
}

// CarListing is a car joined with its class rate.
type CarListing struct {
	domain.Car
	Rate domain.CarClassRate
}

// CarInput is the admin create/update payload.
type CarInput struct {
	Class        string `json:"class" validate:"required,oneof=economy standard comfort premium"`
	Make         string `json:"make" validate:"required,max=50"`
	Model        string `json:"model" validate:"required,max=50"`
	Year         int    `json:"year" validate:"required,min=1950,max=2100"`
	Seats        int    `json:"seats" validate:"required,min=1,max=12"`
	Transmission string `json:"transmission" validate:"required,oneof=manual automatic"`
	Fuel         string `json:"fuel" validate:"required,max=20"`
	Available    *bool  `json:"available"`
}

func (in CarInput) toDomain() (domain.Car, error) {
	class, err := domain.ParseCarClass(in.Class)
	if err != nil {
		return domain.Car{}, err
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return domain.Car{
		Class:        class,
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		Seats:        in.Seats,
		Transmission: in.Transmission,
		Fuel:         in.Fuel,
		Available:    available,
	}, nil
}

// CarService serves the public catalog and the admin fleet screens.
type CarService struct {
	cars   repo.CarRepo
	rates  RateLookup
	images ImageStore
	log    *slog.Logger
}

// NewCarService constructs a CarService. images may be nil, which disables uploads.
func NewCarService(cars repo.CarRepo, rates RateLookup, images ImageStore, log *slog.Logger) *CarService {
	return &CarService{cars: cars, rates: rates, images: images, log: log}
}

// List returns cars with their class rate. A nil class lists every class.
func (s *CarService) List(ctx context.Context, class *domain.CarClass, onlyAvailable bool) ([]CarListing, error) {
	cars, err := s.cars.List(ctx, class, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("service.CarService.List: %w", err)
	}

	out := make([]CarListing, 0, len(cars))
	for _, c := range cars {
		l, err := s.listing(c)
		if err != nil {
			return nil, fmt.Errorf("service.CarService.List: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Get returns one car with its class rate.
func (s *CarService) Get(ctx context.Context, id uuid.UUID) (CarListing, error) {
	c, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Get: %w", err)
	}
	l, err := s.listing(c)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Get: %w", err)
	}
	return l, nil
}

// Create validates in and adds a car to the fleet.
func (s *CarService) Create(ctx context.Context, in CarInput) (CarListing, error) {
	car, err := s.validate(in)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Create: %w", err)
	}
	created, err := s.cars.Create(ctx, car)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "car created", "car_id", created.ID, "class", created.Class)
	return s.listing(created)
}

// Update validates in and overwrites the car's mutable fields.
func (s *CarService) Update(ctx context.Context, id uuid.UUID, in CarInput) (CarListing, error) {
	car, err := s.validate(in)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Update: %w", err)
	}
	car.ID = id
	updated, err := s.cars.Update(ctx, car)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.Update: %w", err)
	}
	return s.listing(updated)
}

// Delete removes a car and, best effort, its photo.
func (s *CarService) Delete(ctx context.Context, id uuid.UUID) error {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	if err := s.cars.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	s.removeImage(ctx, car.ImageURL)
	s.log.InfoContext(ctx, "car deleted", "car_id", id)
	return nil
}

// UploadImage stores a new photo for the car and replaces the old one.
func (s *CarService) UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (CarListing, error) {
	if s.images == nil {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w",
			domain.NewMessageError(ErrStorageDisabled, MsgStorageDisabled))
	}
	ext, err := storage.Extension(contentType)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w",
			domain.NewMessageError(domain.ErrValidation, MsgUnsupportedType))
	}
	if size <= 0 || size > s.images.MaxBytes() {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w",
			domain.NewMessageError(domain.ErrValidation, "validation.max", fmt.Sprintf("%d bytes", s.images.MaxBytes())))
	}

	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w", err)
	}

	// A fresh key per upload so CDN caches never serve the previous photo.
	key := storage.CarImageKey(id.String()+"-"+uuid.NewString()[:8], ext)
	url, err := s.images.Put(ctx, key, body, size, contentType)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w: %v", domain.ErrUpstream, err)
	}

	updated, err := s.cars.SetImage(ctx, id, url)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.UploadImage: %w", err)
	}
	s.removeImage(ctx, car.ImageURL)
	return s.listing(updated)
}

func (s *CarService) removeImage(ctx context.Context, url string) {
	if s.images == nil || url == "" {
		return
	}
	key, ok := s.images.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "old car image not deleted", "key", key, "error", err)
	}
}

func (s *CarService) validate(in CarInput) (domain.Car, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Car{}, err
	}
	return in.toDomain()
}

func (s *CarService) listing(c domain.Car) (CarListing, error) {
	rate, err := s.rates.Lookup(c.Class)
	if err != nil {
		return CarListing{}, err
	}
	return CarListing{Car: c, Rate: rate}, nil
}
