// Package transit is the query facade over the network store and the itinerary router.
package transit

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/router"
)

var (
	// ErrUnknownStop means one of the stop names in a query is not in the network.
	ErrUnknownStop = errors.New("unknown stop")
	// ErrNoRoute means both stops exist but no itinerary connects them.
	ErrNoRoute = errors.New("no route")
)

// Manager answers queries against a frozen network. Every method is read-only and
// safe to call from multiple goroutines.
type Manager struct {
	store    *catalogue.Store
	graph    *router.Graph
	router   *router.Router
	settings router.Settings
	loadedAt time.Time
}

// InitManager freezes the store, builds the itinerary graph and returns a ready Manager.
func InitManager(store *catalogue.Store, settings router.Settings) (*Manager, error) {
	store.Freeze()

	graph, err := router.BuildGraph(store, settings)
	if err != nil {
		return nil, fmt.Errorf("error building itinerary graph: %w", err)
	}

	manager := &Manager{
		store:    store,
		graph:    graph,
		router:   router.New(graph),
		settings: settings,
		loadedAt: time.Now(),
	}

	logger := slog.Default().With(slog.String("component", "transit_manager"))
	logging.LogOperation(logger, "transit_manager_ready",
		slog.Int("stops", store.StopCount()),
		slog.Int("buses", store.BusCount()),
		slog.Int("graph_edges", graph.EdgeCount()))

	return manager, nil
}

func (manager *Manager) IsReady() bool {
	return manager != nil && manager.graph != nil
}

func (manager *Manager) LoadedAt() time.Time {
	return manager.loadedAt
}

func (manager *Manager) Settings() router.Settings {
	return manager.settings
}

func (manager *Manager) Graph() *router.Graph {
	return manager.graph
}

func (manager *Manager) FindStop(name string) (catalogue.Stop, bool) {
	return manager.store.FindStop(name)
}

func (manager *Manager) FindBus(name string) (catalogue.Bus, bool) {
	return manager.store.FindBus(name)
}

// GetBusInfo returns route statistics, or false and a zero BusInfo for an unknown bus.
func (manager *Manager) GetBusInfo(name string) (catalogue.BusInfo, bool) {
	return manager.store.GetBusInfo(name)
}

// GetRoutesThroughStop returns the names of the buses serving a stop in name order.
// The bool is false when the stop does not exist, which is distinct from a known stop
// that no bus serves.
func (manager *Manager) GetRoutesThroughStop(name string) ([]string, bool) {
	ids, ok := manager.store.GetRoutesThroughStop(name)
	if !ok {
		return nil, false
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, manager.store.Bus(id).Name)
	}
	return names, true
}

// GetShortestItinerary finds the fastest itinerary between two stops by name. It fails
// with ErrUnknownStop when either name is unknown and ErrNoRoute when no path exists.
func (manager *Manager) GetShortestItinerary(fromName, toName string) (router.Itinerary, error) {
	from, ok := manager.store.FindStop(fromName)
	if !ok {
		return router.Itinerary{}, fmt.Errorf("%w: %q", ErrUnknownStop, fromName)
	}
	to, ok := manager.store.FindStop(toName)
	if !ok {
		return router.Itinerary{}, fmt.Errorf("%w: %q", ErrUnknownStop, toName)
	}

	itinerary, found := manager.router.ShortestRoute(from.ID, to.ID)
	if !found {
		return router.Itinerary{}, fmt.Errorf("%w: %q -> %q", ErrNoRoute, fromName, toName)
	}
	return itinerary, nil
}

// GetStops returns every stop in registration order.
func (manager *Manager) GetStops() []catalogue.Stop {
	return manager.store.Stops()
}

// GetBuses returns every bus in registration order.
func (manager *Manager) GetBuses() []catalogue.Bus {
	return manager.store.Buses()
}

func (manager *Manager) Stop(id catalogue.StopID) catalogue.Stop {
	return manager.store.Stop(id)
}

// GetStopsForLocation returns stops within radius meters of a point, nearest first,
// truncated to maxCount when maxCount is positive.
func (manager *Manager) GetStopsForLocation(lat, lon, radius float64, maxCount int) []catalogue.NearbyStop {
	if radius == 0 {
		radius = 500
	}

	stops := manager.store.StopsWithin(lat, lon, radius)
	if maxCount > 0 && len(stops) > maxCount {
		stops = stops[:maxCount]
	}
	return stops
}
