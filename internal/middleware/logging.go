package middleware

import (
	"net/http"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/requestid"
	"github.com/android254/droidconke-feeds/internal/tracing"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog writes one log line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", time.Since(start),
			"request_id", requestid.FromContext(r.Context()),
			"trace_id", tracing.TraceIDFromContext(r.Context()),
			"client_ip", getIP(r),
		}
		if rec.status >= http.StatusInternalServerError {
			config.GetLogger().Errorw("http request", fields...)
			return
		}
		config.GetLogger().Infow("http request", fields...)
	})
}
