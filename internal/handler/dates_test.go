package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/handler"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/service"
)

var (
	pickup  = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	dropoff = time.Date(2025, 7, 6, 9, 0, 0, 0, time.UTC)
)

func invalidToken() error {
	return fmt.Errorf("service.DateRangeService.Decode: %w",
		domain.NewMessageError(domain.ErrValidation, service.MsgInvalidToken))
}

// ---- POST /api/v1/date-ranges ----------------------------------------------

func TestEncodeDateRange_200(t *testing.T) {
	dates := &mockDates{encode: func(start, end time.Time) (string, error) {
		assert.True(t, start.Equal(pickup))
		assert.True(t, end.Equal(dropoff))
		return "mc1xa0g0-mc7ctgg0-1a2b3c", nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/date-ranges",
		jsonBody(t, map[string]any{"start": pickup, "end": dropoff}))
	rec := serve(newHTTPHandler(handler.Services{Dates: dates}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"mc1xa0g0-mc7ctgg0-1a2b3c"}`, rec.Body.String())
}

func TestEncodeDateRange_missingEnd_422(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/date-ranges",
		jsonBody(t, map[string]any{"start": pickup}))
	rec := serve(newHTTPHandler(handler.Services{Dates: &mockDates{}}), req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, map[string]string{"end": "Полето е задължително."}, e.Fields)
}

func TestEncodeDateRange_malformedBody_400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/date-ranges", strings.NewReader(`{"start":`))
	rec := serve(newHTTPHandler(handler.Services{Dates: &mockDates{}}), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request_error", decodeError(t, rec).Code)
}

func TestEncodeDateRange_oversizedBody_413(t *testing.T) {
	body := `{"start":"` + strings.Repeat("x", 2<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/date-ranges", strings.NewReader(body))
	rec := serve(newHTTPHandler(handler.Services{Dates: &mockDates{}}), req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ---- GET /api/v1/date-ranges/{token} ---------------------------------------

func TestDecodeDateRange_200(t *testing.T) {
	dates := &mockDates{decode: func(token string) (daterange.Decoded, error) {
		assert.Equal(t, "tok-en-x", token)
		return daterange.Decoded{DateRange: domain.DateRange{Start: pickup, End: dropoff}, ChecksumValid: false}, nil
	}}

	rec := serve(newHTTPHandler(handler.Services{Dates: dates}),
		httptest.NewRequest(http.MethodGet, "/api/v1/date-ranges/tok-en-x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.DateRangeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Start.Equal(pickup))
	assert.True(t, body.End.Equal(dropoff))
	assert.False(t, body.ChecksumValid, "a mismatch is reported, not rejected")
}

func TestDecodeDateRange_malformed_422(t *testing.T) {
	dates := &mockDates{decode: func(string) (daterange.Decoded, error) { return daterange.Decoded{}, invalidToken() }}

	rec := serve(newHTTPHandler(handler.Services{Dates: dates}),
		httptest.NewRequest(http.MethodGet, "/api/v1/date-ranges/garbage?lang=en", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "validation_error", e.Code)
	assert.Equal(t, "The booking link is invalid. Please choose your dates again.", e.Message)
}

// ---- POST /api/v1/quick-booking --------------------------------------------

func TestQuickBooking_200WithRedirect(t *testing.T) {
	quotes := &mockQuotes{quickBooking: func(_ context.Context, start, end time.Time) (service.QuickBookingResult, error) {
		assert.True(t, start.Equal(pickup))
		assert.True(t, end.Equal(dropoff))
		return service.QuickBookingResult{Token: "abc-def-123", Days: 5}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quick-booking",
		jsonBody(t, map[string]any{"pickup": pickup, "return": dropoff}))
	rec := serve(newHTTPHandler(handler.Services{Quotes: quotes}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.QuickBookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "abc-def-123", body.Token)
	assert.Equal(t, 5, body.Days)
	assert.Equal(t, "/booking?dates=abc-def-123", body.Redirect)
}

func TestQuickBooking_policyViolation_localized(t *testing.T) {
	quotes := &mockQuotes{quickBooking: func(context.Context, time.Time, time.Time) (service.QuickBookingResult, error) {
		return service.QuickBookingResult{}, fmt.Errorf("service.QuoteService.QuickBooking: %w",
			domain.NewMessageError(domain.ErrValidation, pricing.MsgMinimumPeriod, 5))
	}}
	h := newHTTPHandler(handler.Services{Quotes: quotes})

	cases := map[string]string{
		"en": "The minimum rental period is 5 days.",
		"bg": "Минималният период на наемане е 5 дни.",
	}
	for lang, want := range cases {
		t.Run(lang, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/quick-booking?lang="+lang,
				jsonBody(t, map[string]any{"pickup": pickup, "return": pickup.Add(48 * time.Hour)}))
			rec := serve(h, req)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, want, decodeError(t, rec).Message)
		})
	}
}

func TestQuickBooking_unknownField_400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quick-booking",
		jsonBody(t, map[string]any{"pickup": pickup, "dropoff": dropoff}))
	rec := serve(newHTTPHandler(handler.Services{Quotes: &mockQuotes{}}), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /api/v1/quote -----------------------------------------------------

func TestGetQuote_valid(t *testing.T) {
	quotes := &mockQuotes{quote: func(_ context.Context, token string, class domain.CarClass) (service.QuoteResult, error) {
		assert.Equal(t, "abc-def-123", token)
		assert.Equal(t, domain.ClassEconomy, class)
		return service.QuoteResult{
			Range:         domain.DateRange{Start: pickup, End: dropoff},
			ChecksumValid: true,
			Rate:          economyRate(),
			Quote:         domain.BookingQuote{Days: 5, DailyRate: 30, TotalPrice: 150, Currency: "EUR"},
			Valid:         true,
		}, nil
	}}

	rec := serve(newHTTPHandler(handler.Services{Quotes: quotes}),
		httptest.NewRequest(http.MethodGet, "/api/v1/quote?dates=abc-def-123&class=economy", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.QuoteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 5, body.Days)
	assert.InDelta(t, 150.0, body.TotalPrice, 0.001)
	assert.Equal(t, "150.00", body.TotalDisplay)
	assert.True(t, body.Valid)
	assert.True(t, body.ChecksumValid)
	assert.Empty(t, body.Error)
}

func TestGetQuote_invalidRangeStillPriced(t *testing.T) {
	quotes := &mockQuotes{quote: func(context.Context, string, domain.CarClass) (service.QuoteResult, error) {
		return service.QuoteResult{
			Range:   domain.DateRange{Start: pickup, End: pickup.Add(90 * time.Minute)},
			Rate:    economyRate(),
			Quote:   domain.BookingQuote{Days: 1, DailyRate: 30, TotalPrice: 30, Currency: "EUR"},
			Valid:   false,
			Problem: domain.NewMessageError(domain.ErrValidation, pricing.MsgSameCalendarDay),
		}, nil
	}}

	rec := serve(newHTTPHandler(handler.Services{Quotes: quotes}),
		httptest.NewRequest(http.MethodGet, "/api/v1/quote?dates=x-y-z&class=economy&lang=en", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.QuoteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Valid)
	assert.Equal(t, "30.00", body.TotalDisplay)
	assert.Equal(t, "Pickup and return cannot be on the same day.", body.Error)
}

func TestGetQuote_missingParams_422(t *testing.T) {
	rec := serve(newHTTPHandler(handler.Services{Quotes: &mockQuotes{}}),
		httptest.NewRequest(http.MethodGet, "/api/v1/quote", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Contains(t, e.Fields, "dates")
	assert.Contains(t, e.Fields, "class")
}

func TestGetQuote_malformedToken_422(t *testing.T) {
	quotes := &mockQuotes{quote: func(context.Context, string, domain.CarClass) (service.QuoteResult, error) {
		return service.QuoteResult{}, fmt.Errorf("service.QuoteService.Quote: %w", invalidToken())
	}}

	rec := serve(newHTTPHandler(handler.Services{Quotes: quotes}),
		httptest.NewRequest(http.MethodGet, "/api/v1/quote?dates=garbage&class=premium", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Връзката за резервация е невалидна. Моля, изберете датите отново.", decodeError(t, rec).Message)
}
