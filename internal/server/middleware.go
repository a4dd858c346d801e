package server

import (
	"net/http"

	"github.com/felixge/httpsnoop"
)

// accessLog logs every request once it has been handled.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration,
			"bytes", m.Written,
		)
	})
}
