package handler

import (
	"net/http"

	"github.com/pkordes/car-rental/backend/internal/i18n"
	"github.com/pkordes/car-rental/backend/internal/service"
)

// SendContact handles POST /api/v1/contact.
// It answers 202 once the message was handed to the email provider.
func (s *Server) SendContact(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Locale = i18n.FromContext(r.Context())

	if err := s.contact.Send(r.Context(), req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
