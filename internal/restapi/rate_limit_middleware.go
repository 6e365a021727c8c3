package restapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"catalogue.onebusaway.org/internal/app"
	"catalogue.onebusaway.org/internal/clock"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/models"
)

const (
	anonymousLimiterKey = "__no_key__"
	limiterIdleTTL      = 10 * time.Minute
	limiterSweepEvery   = 5 * time.Minute
)

type keyLimiter struct {
	limiter *rate.Limiter
	// lastSeen is in Unix nanoseconds of the middleware clock.
	lastSeen atomic.Int64
}

// RateLimitMiddleware enforces a token bucket per API key. Buckets idle for
// longer than limiterIdleTTL are evicted by a background sweep.
type RateLimitMiddleware struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter

	limit      rate.Limit
	burst      int
	exemptKeys map[string]struct{}
	clock      clock.Clock

	sweep    *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// limitFor turns "n requests per interval" into a rate. Zero blocks every request;
// a negative count disables limiting.
func limitFor(requests int, interval time.Duration) rate.Limit {
	switch {
	case requests == 0:
		return 0
	case requests < 0:
		return rate.Inf
	default:
		return rate.Every(interval / time.Duration(requests))
	}
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval for every
// API key, with a burst of the same size. Keys in exemptKeys are never limited.
// Call Stop to end the background sweep.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, exemptKeys []string, c clock.Clock) *RateLimitMiddleware {
	exempt := make(map[string]struct{}, len(exemptKeys))
	for _, key := range exemptKeys {
		if key = strings.TrimSpace(key); key != "" {
			exempt[key] = struct{}{}
		}
	}

	rl := &RateLimitMiddleware{
		limiters:   make(map[string]*keyLimiter),
		limit:      limitFor(requestsPerInterval, interval),
		burst:      requestsPerInterval,
		exemptKeys: exempt,
		clock:      c,
		sweep:      time.NewTicker(limiterSweepEvery),
		stopChan:   make(chan struct{}),
	}
	go rl.sweepLoop()

	return rl
}

func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return rl.rateLimitHandler
}

func (rl *RateLimitMiddleware) isExempt(apiKey string) bool {
	_, ok := rl.exemptKeys[apiKey]
	return ok
}

// getLimiter returns the bucket for apiKey, creating it on first use, and marks
// the key as seen.
func (rl *RateLimitMiddleware) getLimiter(apiKey string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	entry, ok := rl.limiters[apiKey]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		// Re-check: another request may have created it while we waited.
		if entry, ok = rl.limiters[apiKey]; !ok {
			entry = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
			rl.limiters[apiKey] = entry
		}
		rl.mu.Unlock()
	}

	entry.lastSeen.Store(now)
	return entry.limiter
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := app.RequestAPIKey(r)
		if apiKey == "" {
			apiKey = anonymousLimiterKey
		}

		if rl.isExempt(apiKey) {
			next.ServeHTTP(w, r)
			return
		}

		limiter := rl.getLimiter(apiKey)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))

		if !limiter.Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}

		remaining := math.Max(0, math.Floor(limiter.Tokens()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the time until the next token, at least one second.
func (rl *RateLimitMiddleware) retryAfter() time.Duration {
	switch rl.limit {
	case 0:
		return time.Hour
	case rate.Inf:
		return time.Second
	}
	return max(time.Second, time.Duration(float64(time.Second)/float64(rl.limit)))
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter().Seconds())))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	data := map[string]interface{}{
		"entry":      nil,
		"references": models.NewEmptyReferences(),
	}
	response := models.NewResponse(http.StatusTooManyRequests, data, "Rate limit exceeded. Please try again later.", rl.clock)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(slog.Default(), "failed to encode rate limit response", err)
	}
}

// cleanupOnce evicts every non-exempt bucket idle for longer than limiterIdleTTL.
func (rl *RateLimitMiddleware) cleanupOnce() {
	cutoff := rl.clock.Now().Add(-limiterIdleTTL).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if rl.isExempt(key) {
			continue
		}
		if seen := entry.lastSeen.Load(); seen != 0 && seen < cutoff {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) sweepLoop() {
	for {
		select {
		case <-rl.sweep.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once and does not
// affect requests in flight.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.sweep.Stop()
	})
}
