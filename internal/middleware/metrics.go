package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// HTTPObserver receives one observation per finished request.
// *metrics.Metrics satisfies it.
type HTTPObserver interface {
	ObserveHTTP(method, route, status string, seconds float64)
}

// NewMetricsHandler records request counts and latency labelled by the chi
// route pattern, never the raw path, so IDs in URLs do not explode cardinality.
func NewMetricsHandler(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			obs.ObserveHTTP(r.Method, routePattern(r), strconv.Itoa(status), time.Since(start).Seconds())
		})
	}
}
