package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/middleware"
	"github.com/pkordes/car-rental/backend/internal/service"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// LoginRequest is the body of POST /api/v1/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is what the dashboard polls to decide whether to show the login form.
type SessionResponse struct {
	LoggedIn  bool       `json:"logged_in"`
	Username  string     `json:"username,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BookingPageResponse is one page of the admin booking list.
type BookingPageResponse struct {
	Items      []BookingResponse `json:"items"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// StatusRequest is the body of PATCH /api/v1/admin/bookings/{id}.
type StatusRequest struct {
	Status string `json:"status"`
}

// --- session ----------------------------------------------------------------

// AdminLogin handles POST /api/v1/admin/login.
// On success the token is set as an HttpOnly cookie; it is never put in the body.
func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	verr := &validation.Error{}
	if body.Username == "" {
		verr.Add("username", "validation.required")
	}
	if body.Password == "" {
		verr.Add("password", "validation.required")
	}
	if len(verr.Fields) > 0 {
		s.writeError(w, r, verr)
		return
	}

	token, sess, err := s.admin.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// AdminLogout handles POST /api/v1/admin/logout. It always succeeds.
func (s *Server) AdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: false})
}

// AdminSession handles GET /api/v1/admin/session.
// It never answers 401: an absent or expired session is logged_in=false.
func (s *Server) AdminSession(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: false})
		return
	}
	sess, err := s.admin.Session(token)
	if err != nil || !sess.LoggedIn {
		writeJSON(w, http.StatusOK, SessionResponse{LoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// --- bookings ---------------------------------------------------------------

// ListBookings handles GET /api/v1/admin/bookings.
// Supports status, from, to, car_id, page and limit query parameters.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	f, ok := s.bookingFilter(w, r)
	if !ok {
		return
	}
	var page, limit *int
	if !s.queryParam(w, r, "page", &page) || !s.queryParam(w, r, "limit", &limit) {
		return
	}

	res, err := s.bookings.List(r.Context(), f, domain.NewPaginationParams(page, limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]BookingResponse, len(res.Items))
	for i, b := range res.Items {
		items[i] = bookingToResponse(b)
	}
	writeJSON(w, http.StatusOK, BookingPageResponse{
		Items:      items,
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages(),
	})
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/{id}.
func (s *Server) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body StatusRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	status, err := domain.ParseBookingStatus(body.Status)
	if err != nil {
		s.fieldError(w, r, "status", "validation.invalid")
		return
	}

	b, err := s.bookings.UpdateStatus(r.Context(), id, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "booking status changed", "booking_id", id, "status", status, "admin", actor(r))
	writeJSON(w, http.StatusOK, bookingToResponse(b))
}

// bookingFilter binds the filter query parameters shared by the list and the export.
func (s *Server) bookingFilter(w http.ResponseWriter, r *http.Request) (domain.BookingFilter, bool) {
	var (
		f      domain.BookingFilter
		status *string
		carID  *uuid.UUID
	)
	if !s.queryParam(w, r, "status", &status) ||
		!s.queryParam(w, r, "car_id", &carID) ||
		!s.queryParam(w, r, "from", &f.From) ||
		!s.queryParam(w, r, "to", &f.To) {
		return f, false
	}
	if status != nil && *status != "" {
		st, err := domain.ParseBookingStatus(*status)
		if err != nil {
			s.fieldError(w, r, "status", "validation.invalid")
			return f, false
		}
		f.Status = &st
	}
	f.CarID = carID
	return f, true
}

// --- cars -------------------------------------------------------------------

// CreateCar handles POST /api/v1/admin/cars.
func (s *Server) CreateCar(w http.ResponseWriter, r *http.Request) {
	var in service.CarInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	car, err := s.cars.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, carToResponse(car, i18n.FromContext(r.Context())))
}

// UpdateCar handles PUT /api/v1/admin/cars/{id}. The image is not touched.
func (s *Server) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var in service.CarInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	car, err := s.cars.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car, i18n.FromContext(r.Context())))
}

// DeleteCar handles DELETE /api/v1/admin/cars/{id}.
// A car that still has bookings answers 409.
func (s *Server) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.cars.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "car deleted", "car_id", id, "admin", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

// UploadCarImage handles PUT /api/v1/admin/cars/{id}/image.
// The body is the raw image; Content-Type names its format.
func (s *Server) UploadCarImage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fieldError(w, r, "image", "storage.too_large")
			return
		}
		s.requestError(w, r, "request.invalid_body")
		return
	}
	if len(data) == 0 {
		s.fieldError(w, r, "image", "validation.required")
		return
	}

	car, err := s.cars.UploadImage(r.Context(), id, bytes.NewReader(data), int64(len(data)), r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car, i18n.FromContext(r.Context())))
}

// actor is the username of the admin session RequireAdmin attached to r.
func actor(r *http.Request) string {
	sess, _ := middleware.SessionFromContext(r.Context())
	return sess.Username
}

// --- mapping helpers --------------------------------------------------------

func sessionToResponse(sess domain.Session) SessionResponse {
	out := SessionResponse{LoggedIn: sess.LoggedIn, Username: sess.Username}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	return out
}
