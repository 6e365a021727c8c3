package restapi

import (
	"net/http"
	"time"

	"catalogue.onebusaway.org/internal/app"
	"catalogue.onebusaway.org/internal/clock"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	if app.Clock == nil {
		app.Clock = clock.RealClock{}
	}
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second, app.Config.ExemptApiKeys, app.Clock),
	}
}

// Shutdown stops background goroutines owned by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// Handler wraps mux with the middleware every request passes through,
// outermost first: request ID, logging, metrics, security headers, compression.
func (api *RestAPI) Handler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux
	handler = CompressionMiddleware(handler)
	handler = api.WithSecurityHeaders(handler)
	handler = MetricsHandler(api.Metrics)(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
