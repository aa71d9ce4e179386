package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database or the rate table.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, return before pickup).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when admin credentials or a session token are
// missing, wrong, or expired. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnavailable is returned when a booking targets a car that is currently
// marked unavailable. Handlers should map this to HTTP 409 Conflict.
var ErrUnavailable = errors.New("car unavailable")

// ErrUpstream is returned when an external collaborator (booking sheet, email
// delivery, object storage) fails or rejects the call.
// Handlers should map this to HTTP 502 with a generic localized message.
var ErrUpstream = errors.New("upstream failure")

// MessageError carries an i18n message key alongside a sentinel, so the
// handler can render the failure in the caller's language.
// errors.Is matches the wrapped sentinel; Key names the translation.
type MessageError struct {
	Sentinel error
	Key      string
	Args     []any
}

// NewMessageError builds a MessageError wrapping sentinel.
func NewMessageError(sentinel error, key string, args ...any) *MessageError {
	return &MessageError{Sentinel: sentinel, Key: key, Args: args}
}

func (e *MessageError) Error() string {
	return e.Sentinel.Error() + ": " + e.Key
}

func (e *MessageError) Unwrap() error {
	return e.Sentinel
}

// ErrConflict is returned when a write would break a referential rule, such
// as deleting a car that still has bookings. Handlers map this to HTTP 409.
var ErrConflict = errors.New("conflict")
