// Package sheets is the client for the spreadsheet-backed booking endpoint
// that holds the business's reservation ledger.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pkordes/car-rental/backend/internal/integrations/breaker"
)

var (
	// ErrInternal is returned when the request could not be built or sent.
	ErrInternal = errors.New("sheets client: internal error")

	// ErrInvalidResponse is returned for non-2xx statuses and undecodable bodies.
	ErrInvalidResponse = errors.New("sheets client: invalid response")

	// ErrRejected is returned when the endpoint answers success=false.
	ErrRejected = errors.New("sheets client: reservation rejected")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("sheets client: upstream unavailable")
)

// Reservation is the request body the booking endpoint accepts.
// Dates are RFC 3339 with millisecond precision, UTC.
type Reservation struct {
	CarID       string `json:"carId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail"`
}

// NewReservation formats start and end the way the endpoint expects.
func NewReservation(carID string, start, end time.Time, name, phone, email string) Reservation {
	return Reservation{
		CarID:       carID,
		StartDate:   start.UTC().Format(timeLayout),
		EndDate:     end.UTC().Format(timeLayout),
		ClientName:  name,
		ClientPhone: phone,
		ClientEmail: email,
	}
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type response struct {
	Success bool `json:"success"`
	Data    struct {
		ReservationID string `json:"reservationId"`
	} `json:"data"`
	Error string `json:"error"`
}

// Client talks to the booking endpoint. Create it with NewClient.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *slog.Logger
}

// NewClient creates a client posting to url. token, when non-empty, is sent
// as a Bearer token.
func NewClient(url, token string, timeout time.Duration, s breaker.Settings, onChange breaker.StateListener, log *slog.Logger) *Client {
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker.New("sheets", s, onChange),
		log:        log,
	}
}

// CreateReservation submits r and returns the reservation id.
// It is called at most once per submission; there is no idempotency key, so
// a double submit creates two rows upstream.
func (c *Client) CreateReservation(ctx context.Context, r Reservation) (string, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, r)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}

	// Rejections are returned as values so they do not trip the breaker:
	// the endpoint is up, it just refused this booking.
	resp := out.(response)
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "no reason given"
		}
		c.log.WarnContext(ctx, "booking endpoint rejected reservation", "car_id", r.CarID, "reason", msg)
		return "", fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if resp.Data.ReservationID == "" {
		return "", fmt.Errorf("%w: success without reservationId", ErrInvalidResponse)
	}

	c.log.InfoContext(ctx, "reservation created", "car_id", r.CarID, "reservation_id", resp.Data.ReservationID)
	return resp.Data.ReservationID, nil
}

func (c *Client) post(ctx context.Context, r Reservation) (response, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return response{}, fmt.Errorf("%w: encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("%w: create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%w: execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return response{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(b))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("%w: decode response: %v", ErrInvalidResponse, err)
	}
	return out, nil
}
