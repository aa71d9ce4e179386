package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// DateRangeRequest is the body of POST /api/v1/date-ranges.
type DateRangeRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// DateRangeResponse is a decoded token.
type DateRangeResponse struct {
	Token         string    `json:"token,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ChecksumValid bool      `json:"checksum_valid"`
}

// QuickBookingRequest is the landing page form.
type QuickBookingRequest struct {
	Pickup *time.Time `json:"pickup"`
	Return *time.Time `json:"return"`
}

// QuickBookingResponse tells the landing page where to send the visitor.
type QuickBookingResponse struct {
	Token    string `json:"token"`
	Days     int    `json:"days"`
	Redirect string `json:"redirect"`
}

// QuoteResponse is a priced date range for one car class.
// Error is set, in the caller's language, when Valid is false.
type QuoteResponse struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Class         string    `json:"class"`
	Days          int       `json:"days"`
	DailyRate     float64   `json:"daily_rate"`
	TotalPrice    float64   `json:"total_price"`
	TotalDisplay  string    `json:"total_display"`
	Currency      string    `json:"currency"`
	Valid         bool      `json:"valid"`
	ChecksumValid bool      `json:"checksum_valid"`
	Error         string    `json:"error,omitempty"`
}

// bookingPath is the wizard entry the landing page redirects to.
const bookingPath = "/booking"

// EncodeDateRange handles POST /api/v1/date-ranges.
func (s *Server) EncodeDateRange(w http.ResponseWriter, r *http.Request) {
	var body DateRangeRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if verr := requireInstants(map[string]*time.Time{"start": body.Start, "end": body.End}); verr != nil {
		s.writeError(w, r, verr)
		return
	}

	token, err := s.dates.Encode(*body.Start, *body.End)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// DecodeDateRange handles GET /api/v1/date-ranges/{token}.
// A checksum mismatch still returns 200 with checksum_valid=false.
func (s *Server) DecodeDateRange(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	d, err := s.dates.Decode(token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DateRangeResponse{
		Token:         token,
		Start:         d.Start.UTC(),
		End:           d.End.UTC(),
		ChecksumValid: d.ChecksumValid,
	})
}

// QuickBooking handles POST /api/v1/quick-booking.
func (s *Server) QuickBooking(w http.ResponseWriter, r *http.Request) {
	var body QuickBookingRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if verr := requireInstants(map[string]*time.Time{"pickup": body.Pickup, "return": body.Return}); verr != nil {
		s.writeError(w, r, verr)
		return
	}

	res, err := s.quotes.QuickBooking(r.Context(), *body.Pickup, *body.Return)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuickBookingResponse{
		Token:    res.Token,
		Days:     res.Days,
		Redirect: bookingPath + "?dates=" + url.QueryEscape(res.Token),
	})
}

// GetQuote handles GET /api/v1/quote?dates=<token>&class=<class>.
func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	var token, classParam *string
	if !s.queryParam(w, r, "dates", &token) || !s.queryParam(w, r, "class", &classParam) {
		return
	}

	verr := &validation.Error{}
	if token == nil || *token == "" {
		verr.Add("dates", "validation.required")
	}
	if classParam == nil || *classParam == "" {
		verr.Add("class", "validation.required")
	}
	if len(verr.Fields) > 0 {
		s.writeError(w, r, verr)
		return
	}

	class, err := domain.ParseCarClass(*classParam)
	if err != nil {
		s.fieldError(w, r, "class", "validation.invalid")
		return
	}

	res, err := s.quotes.Quote(r.Context(), *token, class)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := QuoteResponse{
		Start:         res.Range.Start.UTC(),
		End:           res.Range.End.UTC(),
		Class:         string(res.Rate.Class),
		Days:          res.Quote.Days,
		DailyRate:     res.Quote.DailyRate,
		TotalPrice:    res.Quote.TotalPrice,
		TotalDisplay:  fmt.Sprintf("%.2f", res.Quote.TotalPrice),
		Currency:      res.Quote.Currency,
		Valid:         res.Valid,
		ChecksumValid: res.ChecksumValid,
	}
	if !res.Valid {
		out.Error = problemMessage(res.Problem, i18n.FromContext(r.Context()))
	}
	writeJSON(w, http.StatusOK, out)
}

// requireInstants reports every nil entry as a required field.
func requireInstants(fields map[string]*time.Time) error {
	verr := &validation.Error{}
	for name, v := range fields {
		if v == nil {
			verr.Add(name, "validation.required")
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// problemMessage renders a range problem in lang.
func problemMessage(err error, lang string) string {
	var merr *domain.MessageError
	if errors.As(err, &merr) {
		return i18n.T(merr.Key, lang, merr.Args...)
	}
	return i18n.T("validation.invalid", lang)
}
