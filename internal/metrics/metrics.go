// Package metrics provides Prometheus metrics for the catalogue service.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Itinerary query outcomes.
const (
	OutcomeFound       = "found"
	OutcomeNoRoute     = "no_route"
	OutcomeUnknownStop = "unknown_stop"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Network size, set once after the catalogue is loaded.
	CatalogueStops prometheus.Gauge
	CatalogueBuses prometheus.Gauge
	GraphVertices  prometheus.Gauge
	GraphEdges     prometheus.Gauge

	NetworkAgeSeconds prometheus.Gauge

	ItineraryQueriesTotal  *prometheus.CounterVec
	ItineraryQueryDuration prometheus.Histogram

	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalogue_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	catalogueStops := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_stops",
		Help: "Number of stops in the loaded network",
	})

	catalogueBuses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_buses",
		Help: "Number of bus routes in the loaded network",
	})

	graphVertices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_itinerary_graph_vertices",
		Help: "Number of vertices in the itinerary graph",
	})

	graphEdges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_itinerary_graph_edges",
		Help: "Number of edges in the itinerary graph",
	})

	networkAge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_network_age_seconds",
		Help: "Seconds since the network was loaded",
	})

	itineraryQueries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_itinerary_queries_total",
			Help: "Itinerary queries by outcome",
		},
		[]string{"outcome"},
	)

	itineraryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalogue_itinerary_query_duration_seconds",
		Help:    "Shortest itinerary search latency",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		catalogueStops,
		catalogueBuses,
		graphVertices,
		graphEdges,
		networkAge,
		itineraryQueries,
		itineraryDuration,
	)

	return &Metrics{
		Registry:               registry,
		HTTPRequestsTotal:      httpRequestsTotal,
		HTTPRequestDuration:    httpRequestDuration,
		CatalogueStops:         catalogueStops,
		CatalogueBuses:         catalogueBuses,
		GraphVertices:          graphVertices,
		GraphEdges:             graphEdges,
		NetworkAgeSeconds:      networkAge,
		ItineraryQueriesTotal:  itineraryQueries,
		ItineraryQueryDuration: itineraryDuration,
		logger:                 logger,
	}
}

// RecordNetwork publishes the size of the loaded network.
func (m *Metrics) RecordNetwork(stops, buses, vertices, edges int) {
	m.CatalogueStops.Set(float64(stops))
	m.CatalogueBuses.Set(float64(buses))
	m.GraphVertices.Set(float64(vertices))
	m.GraphEdges.Set(float64(edges))
}

// RecordItinerary counts one itinerary query and observes its latency.
func (m *Metrics) RecordItinerary(outcome string, duration time.Duration) {
	m.ItineraryQueriesTotal.WithLabelValues(outcome).Inc()
	m.ItineraryQueryDuration.Observe(duration.Seconds())
}

// StartNetworkAgeCollector periodically sets NetworkAgeSeconds from age.
// It is idempotent; call Shutdown to stop it.
func (m *Metrics) StartNetworkAgeCollector(age func() time.Duration, interval time.Duration) {
	if age == nil {
		return
	}

	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic in network age collector", "error", r)
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.NetworkAgeSeconds.Set(age().Seconds())
		for {
			select {
			case <-ticker.C:
				m.NetworkAgeSeconds.Set(age().Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the collector goroutine and waits for it to exit.
// This method is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
