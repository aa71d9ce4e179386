package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/car-rental/backend/internal/i18n"
)

// decodeJSON reads a JSON body into dst. On failure it writes the response
// itself and returns false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, ErrorDetail{
				Code:    codeRequest,
				Message: i18n.T("request.invalid_body", i18n.FromContext(r.Context())),
			})
			return false
		}
		s.requestError(w, r, "request.invalid_body")
		return false
	}
	if dec.More() {
		s.requestError(w, r, "request.invalid_body")
		return false
	}
	return true
}

// pathUUID binds the {name} path segment as a UUID. On failure it writes a
// 404, since a malformed id cannot name an existing resource.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.notFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// queryParam binds an optional query parameter into dst, which must be a
// pointer to a pointer so an absent parameter stays nil. On failure it writes
// a validation error naming the parameter.
func (s *Server) queryParam(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		s.fieldError(w, r, name, "validation.invalid")
		return false
	}
	return true
}
