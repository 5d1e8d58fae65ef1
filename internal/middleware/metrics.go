package middleware

import (
	"net/http"

	"github.com/mcoot/partygame/internal/metrics"
)

// Metrics counts every request by method and response status
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := NewResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			m.ObserveHTTPRequest(r.Method, wrapped.Status())
		})
	}
}
