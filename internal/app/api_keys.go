package app

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader may carry the key instead of the key query parameter.
const APIKeyHeader = "X-Api-Key"

// RequestAPIKey returns the key a request authenticates with, preferring the query parameter.
func RequestAPIKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	return r.Header.Get(APIKeyHeader)
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	for _, validKey := range app.Config.ApiKeys {
		// Constant-time comparison so response timing does not leak key prefixes.
		if subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
			return false
		}
	}

	return true
}
