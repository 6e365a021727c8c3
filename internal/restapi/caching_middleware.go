package restapi

import (
	"fmt"
	"net/http"
	"strings"
)

const noCacheHeader = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware adds Cache-Control headers for successful responses. When
// etag is set it is attached to successful responses, and requests that already
// hold it get 304 Not Modified without reaching next.
func CacheControlMiddleware(durationSeconds int, etag string, next http.Handler) http.Handler {
	var headerValue string
	if durationSeconds > 0 {
		headerValue = fmt.Sprintf("public, max-age=%d", durationSeconds)
	} else {
		headerValue = noCacheHeader
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if etag != "" && etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.Header().Set("ETag", etag)
			w.Header().Set("Cache-Control", headerValue)
			w.WriteHeader(http.StatusNotModified)
			return
		}

		wrapped := &cacheControlWriter{
			ResponseWriter: w,
			headerValue:    headerValue,
			etag:           etag,
		}
		next.ServeHTTP(wrapped, r)
	})
}

func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

type cacheControlWriter struct {
	http.ResponseWriter
	headerValue   string
	etag          string
	headerWritten bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.headerWritten {
		w.headerWritten = true
		if code >= 200 && code < 300 {
			w.ResponseWriter.Header().Set("Cache-Control", w.headerValue)
			if w.etag != "" {
				w.ResponseWriter.Header().Set("ETag", w.etag)
			}
		} else {
			w.ResponseWriter.Header().Set("Cache-Control", noCacheHeader)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
