package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/trio/pkg/metrics"
)

// instrument records request count and latency for endpoint, and counts
// every non-2xx answer as an http error of the matching kind.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Milliseconds()))
		if kind := failureKind(rec.status); kind != "" {
			metrics.RecordErrorByComponent("http", kind)
		}
	}
}

// failureKind maps a status to the error label; "" for success.
func failureKind(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusTooManyRequests:
		// the press was valid but the player's queue was full or paused
		return "dropped"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "client_error"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
