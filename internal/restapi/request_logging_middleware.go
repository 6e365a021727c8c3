package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"catalogue.onebusaway.org/internal/logging"
)

// responseWriter records the status code and body size a handler produced.
// Handlers that never call WriteHeader answer 200.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// NewRequestLoggingMiddleware logs one line per request and hands downstream
// handlers a logger tagged with the request ID.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := GetRequestID(r.Context())

			requestLogger := logger
			if requestLogger != nil && reqID != "" {
				requestLogger = requestLogger.With(slog.String("request_id", reqID))
			}
			r = r.WithContext(logging.WithLogger(r.Context(), requestLogger))

			recorder := newResponseWriter(w)
			next.ServeHTTP(recorder, r)

			logging.LogHTTPRequest(logger,
				r.Method,
				r.URL.Path,
				recorder.statusCode,
				float64(time.Since(start).Nanoseconds())/1e6,
				slog.String("request_id", reqID),
				slog.Int("bytes", recorder.bytes),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.String("component", "http_server"))
		})
	}
}
