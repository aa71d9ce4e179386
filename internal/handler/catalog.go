package handler

import (
	"net/http"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// CarClassResponse is one row of the localized rate table.
type CarClassResponse struct {
	Class     string  `json:"class"`
	Name      string  `json:"name"`
	DailyRate float64 `json:"daily_rate"`
	Currency  string  `json:"currency"`
}

// CarResponse is a car as shown in the catalog and the admin fleet list.
type CarResponse struct {
	ID           string  `json:"id"`
	Class        string  `json:"class"`
	ClassName    string  `json:"class_name"`
	Name         string  `json:"name"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Seats        int     `json:"seats"`
	Transmission string  `json:"transmission"`
	Fuel         string  `json:"fuel"`
	ImageURL     string  `json:"image_url,omitempty"`
	Available    bool    `json:"available"`
	DailyRate    float64 `json:"daily_rate"`
	Currency     string  `json:"currency"`
}

// ListCarClasses handles GET /api/v1/car-classes.
func (s *Server) ListCarClasses(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromContext(r.Context())
	rates := s.quotes.Classes()

	out := make([]CarClassResponse, len(rates))
	for i, rate := range rates {
		out[i] = classToResponse(rate, lang)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListCars handles GET /api/v1/cars.
// ?class= narrows to one class; ?available=true hides unavailable cars.
func (s *Server) ListCars(w http.ResponseWriter, r *http.Request) {
	var (
		classParam *string
		available  *bool
	)
	if !s.queryParam(w, r, "class", &classParam) || !s.queryParam(w, r, "available", &available) {
		return
	}

	var class *domain.CarClass
	if classParam != nil && *classParam != "" {
		c, err := domain.ParseCarClass(*classParam)
		if err != nil {
			s.fieldError(w, r, "class", "validation.invalid")
			return
		}
		class = &c
	}

	cars, err := s.cars.List(r.Context(), class, available != nil && *available)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lang := i18n.FromContext(r.Context())
	out := make([]CarResponse, len(cars))
	for i, c := range cars {
		out[i] = carToResponse(c, lang)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCar handles GET /api/v1/cars/{id}.
func (s *Server) GetCar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	car, err := s.cars.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car, i18n.FromContext(r.Context())))
}

// --- mapping helpers --------------------------------------------------------

func classToResponse(rate domain.CarClassRate, lang string) CarClassResponse {
	return CarClassResponse{
		Class:     string(rate.Class),
		Name:      rate.Name(lang),
		DailyRate: rate.DailyRate,
		Currency:  rate.Currency,
	}
}

func carToResponse(c service.CarListing, lang string) CarResponse {
	return CarResponse{
		ID:           c.ID.String(),
		Class:        string(c.Class),
		ClassName:    c.Rate.Name(lang),
		Name:         c.DisplayName(),
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Seats:        c.Seats,
		Transmission: c.Transmission,
		Fuel:         c.Fuel,
		ImageURL:     c.ImageURL,
		Available:    c.Available,
		DailyRate:    c.Rate.DailyRate,
		Currency:     c.Rate.Currency,
	}
}
