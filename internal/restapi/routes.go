package restapi

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lifetimes in seconds. The network is immutable once loaded, so
// everything derived from it can be cached; the clock cannot.
const (
	networkCacheSeconds  = 300
	realtimeCacheSeconds = 0
)

const requestTimeoutBody = `{"code":503,"text":"request timed out","version":2}`

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// networkETag identifies the loaded network. It changes only when the process
// loads a network, so every response derived from the network can share it.
func (api *RestAPI) networkETag() string {
	if api.Manager == nil {
		return ""
	}
	return fmt.Sprintf(`W/"network-%d"`, api.Manager.LoadedAt().UnixNano())
}

// withTimeout bounds handler execution by the configured request timeout.
// It wraps handlers after routing so the mux pattern stays visible to the
// metrics middleware.
func (api *RestAPI) withTimeout(finalHandler handlerFunc) http.Handler {
	if api.Config.RequestTimeout <= 0 {
		return http.HandlerFunc(finalHandler)
	}
	return http.TimeoutHandler(http.HandlerFunc(finalHandler), api.Config.RequestTimeout, requestTimeoutBody)
}

// rateLimited applies API key validation first, then the per-key rate limit,
// then the cache policy for the endpoint.
func (api *RestAPI) rateLimited(cacheSeconds int, finalHandler handlerFunc) http.Handler {
	etag := ""
	if cacheSeconds > 0 {
		etag = api.networkETag()
	}
	cached := CacheControlMiddleware(cacheSeconds, etag, api.withTimeout(finalHandler))
	return validateAPIKey(api, api.rateLimiter.Handler()(cached).ServeHTTP)
}

func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/where/stop/{name}", api.rateLimited(networkCacheSeconds, api.stopHandler))
	mux.Handle("GET /api/where/bus/{name}", api.rateLimited(networkCacheSeconds, api.busHandler))
	mux.Handle("GET /api/where/routes-for-stop/{name}", api.rateLimited(networkCacheSeconds, api.routesForStopHandler))
	mux.Handle("GET /api/where/itinerary.json", api.rateLimited(networkCacheSeconds, api.itineraryHandler))
	mux.Handle("GET /api/where/stops-for-location.json", api.rateLimited(networkCacheSeconds, api.stopsForLocationHandler))
	mux.Handle("GET /api/where/map.json", api.rateLimited(networkCacheSeconds, api.mapHandler))
	mux.Handle("GET /api/where/config.json", api.rateLimited(networkCacheSeconds, api.configHandler))
	mux.Handle("GET /api/where/current-time.json", api.rateLimited(realtimeCacheSeconds, api.currentTimeHandler))

	mux.HandleFunc("GET /healthz", api.healthHandler)

	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}
