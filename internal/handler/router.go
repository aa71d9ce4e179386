package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/car-rental/backend/internal/middleware"
)

// RouterOptions configures the middleware stack around the Server.
type RouterOptions struct {
	Log         *slog.Logger
	CORSOrigins []string
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64
	// MaxImageBytes caps car image uploads. It should match the image store.
	MaxImageBytes int64
	// Observer records HTTP metrics; nil disables them.
	Observer middleware.HTTPObserver
	// Metrics is served at /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter mounts every route of s on a chi router.
//
// Middleware order: RequestID, RealIP, Recoverer, Locale, SlogLogger,
// Metrics, CORS. RequestID runs first so the logger can print the id, and
// Locale runs before the logger so each line carries the resolved language.
func NewRouter(s *Server, o RouterOptions) http.Handler {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 64 << 10
	}
	if o.MaxImageBytes <= 0 {
		o.MaxImageBytes = 5 << 20
	}
	log := o.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Locale)
	r.Use(middleware.NewSlogLogger(log))
	if o.Observer != nil {
		r.Use(middleware.NewMetricsHandler(o.Observer))
	}
	r.Use(middleware.NewCORSHandler(o.CORSOrigins))

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewMaxBodySizeHandler(o.MaxBodyBytes))

			r.Get("/car-classes", s.ListCarClasses)
			r.Get("/cars", s.ListCars)
			r.Get("/cars/{id}", s.GetCar)

			r.Post("/date-ranges", s.EncodeDateRange)
			r.Get("/date-ranges/{token}", s.DecodeDateRange)
			r.Post("/quick-booking", s.QuickBooking)
			r.Get("/quote", s.GetQuote)

			r.Post("/bookings", s.CreateBooking)
			r.Post("/contact", s.SendContact)

			r.Post("/admin/login", s.AdminLogin)
			r.Post("/admin/logout", s.AdminLogout)
			r.Get("/admin/session", s.AdminSession)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(s.admin))

				r.Get("/admin/bookings", s.ListBookings)
				r.Get("/admin/bookings/export", s.ExportBookings)
				r.Patch("/admin/bookings/{id}", s.UpdateBookingStatus)

				r.Post("/admin/cars", s.CreateCar)
				r.Put("/admin/cars/{id}", s.UpdateCar)
				r.Delete("/admin/cars/{id}", s.DeleteCar)
			})
		})

		// Image uploads get their own, larger body limit.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewMaxBodySizeHandler(o.MaxImageBytes))
			r.Use(middleware.RequireAdmin(s.admin))
			r.Put("/admin/cars/{id}/image", s.UploadCarImage)
		})
	})

	return r
}
