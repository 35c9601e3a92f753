package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withInstrumentation assigns a request ID, logs each request, and records
// the OTel request counters. route is the registered pattern, not the raw
// path, so metric cardinality stays bounded.
func (s *Server) withInstrumentation(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("handler panic", map[string]interface{}{
					"requestId": requestID,
					"route":     route,
					"panic":     p,
				})
				http.Error(rec, "internal error", http.StatusInternalServerError)
			}

			duration := time.Since(start)
			s.obs.RecordRequest(r.Context(), route, r.Method, rec.status)
			s.obs.RecordRequestDuration(r.Context(), route, duration)
			s.logger.Info("request handled", map[string]interface{}{
				"requestId": requestID,
				"method":    r.Method,
				"route":     route,
				"status":    rec.status,
				"durationMs": duration.Milliseconds(),
			})
		}()

		next(rec, r)
	}
}
