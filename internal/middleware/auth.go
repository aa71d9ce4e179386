package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
)

// SessionCookie is the HttpOnly cookie holding the admin token.
const SessionCookie = "admin_session"

// SessionVerifier validates an admin token.
type SessionVerifier interface {
	Session(token string) (domain.Session, error)
}

type sessionKey struct{}

// SessionFromContext returns the session stored by RequireAdmin.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok
}

// TokenFromRequest returns the admin token from the session cookie or, for
// API clients, an "Authorization: Bearer" header. The cookie wins.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAdmin rejects requests without a valid admin session with 401.
func RequireAdmin(v SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w, r)
				return
			}
			sess, err := v.Session(token)
			if err != nil || !sess.LoggedIn {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
		})
	}
}

// unauthorized writes the same error body shape the handlers use.
func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "unauthorized",
			"message": i18n.T("admin.unauthorized", i18n.FromContext(r.Context())),
		},
	})
}
