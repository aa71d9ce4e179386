package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/service"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// ErrorDetail is the inner object of every error response.
// Fields is set for validation failures and maps JSON field -> message.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse is the body written for every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Error codes.
const (
	codeValidation      = "validation_error"
	codeNotFound        = "not_found"
	codeUnauthorized    = "unauthorized"
	codeUnavailable     = "unavailable"
	codeConflict        = "conflict"
	codeUpstream        = "upstream_error"
	codeRequest         = "request_error"
	codeStorageDisabled = "storage_disabled"
	codeInternal        = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, d ErrorDetail) {
	writeJSON(w, status, ErrorResponse{Error: d})
}

// requestError rejects a request before it reaches the service layer
// (missing or malformed body, unparsable parameter).
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, key string) {
	lang := i18n.FromContext(r.Context())
	writeErrorBody(w, http.StatusBadRequest, ErrorDetail{Code: codeRequest, Message: i18n.T(key, lang)})
}

// fieldError reports a single invalid parameter as a validation failure.
func (s *Server) fieldError(w http.ResponseWriter, r *http.Request, field, key string) {
	verr := &validation.Error{}
	verr.Add(field, key)
	s.writeError(w, r, verr)
}

// writeError maps a service error to its status code and localized body.
// Anything it does not recognize is logged and answered with 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.FromContext(r.Context())

	var verr *validation.Error
	if errors.As(err, &verr) {
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{
			Code:    codeValidation,
			Message: i18n.T("validation.failed", lang),
			Fields:  verr.Messages(lang),
		})
		return
	}

	status, code, key := classify(err)
	var merr *domain.MessageError
	if errors.As(err, &merr) {
		key = merr.Key
	}
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	var args []any
	if merr != nil {
		args = merr.Args
	}
	writeErrorBody(w, status, ErrorDetail{Code: code, Message: i18n.T(key, lang, args...)})
}

// classify returns the status, error code and default message key for err.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable, codeStorageDisabled, service.MsgStorageDisabled
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, codeValidation, "validation.invalid"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "request.not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized, "admin.unauthorized"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusConflict, codeUnavailable, service.MsgCarUnavailable
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, codeConflict, "request.conflict"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, codeUpstream, "request.upstream"
	default:
		return http.StatusInternalServerError, codeInternal, "request.internal"
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromContext(r.Context())
	writeErrorBody(w, http.StatusNotFound, ErrorDetail{Code: codeNotFound, Message: i18n.T("request.not_found", lang)})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromContext(r.Context())
	writeErrorBody(w, http.StatusMethodNotAllowed, ErrorDetail{Code: codeRequest, Message: i18n.T("request.invalid_body", lang)})
}
