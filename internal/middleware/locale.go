package middleware

import (
	"net/http"

	"github.com/pkordes/car-rental/backend/internal/i18n"
)

// Locale resolves the response language from ?lang= or Accept-Language,
// stores it in the request context, and echoes it in Content-Language.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang)
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
