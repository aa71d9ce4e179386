// Package emailjs sends templated email through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pkordes/car-rental/backend/internal/integrations/breaker"
)

var (
	ErrInternal        = errors.New("emailjs client: internal error")
	ErrInvalidResponse = errors.New("emailjs client: invalid response")
	// ErrRejected is returned for 4xx answers: bad template, bad keys, quota.
	ErrRejected    = errors.New("emailjs client: request rejected")
	ErrUnavailable = errors.New("emailjs client: upstream unavailable")
)

const sendPath = "/api/v1.0/email/send"

// Credentials identify the EmailJS account and service.
type Credentials struct {
	ServiceID  string
	PublicKey  string
	PrivateKey string
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Client delivers email. Create it with NewClient.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL
// (normally https://api.emailjs.com).
func NewClient(baseURL string, creds Credentials, timeout time.Duration, s breaker.Settings, onChange breaker.StateListener, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker.New("emailjs", s, onChange),
		log:        log,
	}
}

// Send renders templateID with params and delivers it.
func (c *Client) Send(ctx context.Context, templateID string, params map[string]string) error {
	if templateID == "" {
		return fmt.Errorf("%w: empty template id", ErrInternal)
	}

	rejected, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, templateID, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	if rejected != nil {
		if rerr, ok := rejected.(error); ok && rerr != nil {
			c.log.WarnContext(ctx, "emailjs rejected message", "template_id", templateID, "error", rerr)
			return rerr
		}
	}

	c.log.InfoContext(ctx, "email sent", "template_id", templateID)
	return nil
}

// post returns a non-nil rejection value for 4xx answers. Those are reported
// outside the breaker so a misconfigured template cannot open it.
func (c *Client) post(ctx context.Context, templateID string, params map[string]string) (any, error) {
	body, err := json.Marshal(sendRequest{
		ServiceID:      c.creds.ServiceID,
		TemplateID:     templateID,
		UserID:         c.creds.PublicKey,
		AccessToken:    c.creds.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return nil, nil
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg))), nil
	default:
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
