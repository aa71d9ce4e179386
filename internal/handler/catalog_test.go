package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/handler"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// ---- GET /api/v1/car-classes -----------------------------------------------

func TestListCarClasses_localizedNames(t *testing.T) {
	quotes := &mockQuotes{classes: func() []domain.CarClassRate {
		return []domain.CarClassRate{economyRate()}
	}}
	h := newHTTPHandler(handler.Services{Quotes: quotes})

	for lang, want := range map[string]string{"bg": "Икономичен", "en": "Economy"} {
		t.Run(lang, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/car-classes", nil)
			req.Header.Set("Accept-Language", lang)
			rec := serve(h, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var body []handler.CarClassResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Len(t, body, 1)
			assert.Equal(t, want, body[0].Name)
			assert.Equal(t, "economy", body[0].Class)
			assert.InDelta(t, 30.0, body[0].DailyRate, 0.001)
			assert.Equal(t, "EUR", body[0].Currency)
		})
	}
}

// ---- GET /api/v1/cars ------------------------------------------------------

func TestListCars_passesFilters(t *testing.T) {
	var (
		gotClass     *domain.CarClass
		gotAvailable bool
	)
	cars := &mockCars{list: func(_ context.Context, class *domain.CarClass, onlyAvailable bool) ([]service.CarListing, error) {
		gotClass, gotAvailable = class, onlyAvailable
		return []service.CarListing{carFixture()}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars?class=comfort&available=true&lang=en", nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: cars}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClass)
	assert.Equal(t, domain.ClassStandard, *gotClass, "comfort is an alias of standard")
	assert.True(t, gotAvailable)

	var body []handler.CarResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "Dacia Sandero", body[0].Name)
	assert.Equal(t, "Economy", body[0].ClassName)
	assert.InDelta(t, 30.0, body[0].DailyRate, 0.001)
}

func TestListCars_noFilters(t *testing.T) {
	cars := &mockCars{list: func(_ context.Context, class *domain.CarClass, onlyAvailable bool) ([]service.CarListing, error) {
		assert.Nil(t, class)
		assert.False(t, onlyAvailable)
		return nil, nil
	}}

	rec := serve(newHTTPHandler(handler.Services{Cars: cars}), httptest.NewRequest(http.MethodGet, "/api/v1/cars", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListCars_unknownClass_422(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars?class=limousine&lang=en", nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: &mockCars{}}), req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "validation_error", e.Code)
	assert.Equal(t, "Invalid value.", e.Fields["class"])
}

func TestListCars_badAvailable_422(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars?available=maybe", nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: &mockCars{}}), req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "available")
}

// ---- GET /api/v1/cars/{id} -------------------------------------------------

func TestGetCar_200(t *testing.T) {
	fixture := carFixture()
	cars := &mockCars{get: func(_ context.Context, id uuid.UUID) (service.CarListing, error) {
		assert.Equal(t, fixture.ID, id)
		return fixture, nil
	}}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/cars/%s", fixture.ID), nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: cars}), req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.CarResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, fixture.ID.String(), body.ID)
	assert.Equal(t, "Икономичен", body.ClassName, "Bulgarian is the default language")
}

func TestGetCar_404(t *testing.T) {
	cars := &mockCars{get: func(_ context.Context, _ uuid.UUID) (service.CarListing, error) {
		return service.CarListing{}, fmt.Errorf("service.CarService.Get: %w", domain.ErrNotFound)
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars/"+uuid.NewString(), nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: cars}), req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "not_found", e.Code)
	assert.Equal(t, "Не е намерено.", e.Message)
}

func TestGetCar_malformedID_404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars/not-a-uuid", nil)
	rec := serve(newHTTPHandler(handler.Services{Cars: &mockCars{}}), req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
