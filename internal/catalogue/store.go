package catalogue

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tidwall/rtree"

	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/utils"
)

// Store is the network store. The zero value is not usable; call NewStore.
type Store struct {
	stops       []Stop
	buses       []Bus
	stopsByName map[string]StopID
	busesByName map[string]BusID
	distances   map[stopPair]int
	// busesByStop is indexed by StopID and kept sorted by bus name once frozen.
	busesByStop [][]BusID
	spatial     rtree.RTreeG[StopID]
	frozen      bool
}

func NewStore() *Store {
	return &Store{
		stopsByName: make(map[string]StopID),
		busesByName: make(map[string]BusID),
		distances:   make(map[stopPair]int),
	}
}

// AddStop registers a stop. Registering a name twice fails with ErrDuplicateStop.
func (s *Store) AddStop(name string, coords Coordinates) (StopID, error) {
	if s.frozen {
		return 0, ErrFrozen
	}
	if _, exists := s.stopsByName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateStop, name)
	}

	id := StopID(len(s.stops))
	s.stops = append(s.stops, Stop{ID: id, Name: name, Coordinates: coords})
	s.stopsByName[name] = id
	s.busesByStop = append(s.busesByStop, nil)

	point := [2]float64{coords.Lng, coords.Lat}
	s.spatial.Insert(point, point, id)

	return id, nil
}

// SetDistance records the road distance from one stop to another. Setting the same
// ordered pair again overwrites the previous value.
func (s *Store) SetDistance(from, to string, meters int) error {
	if s.frozen {
		return ErrFrozen
	}
	if meters < 0 {
		return fmt.Errorf("%w: %q -> %q = %d", ErrNegativeDistance, from, to, meters)
	}

	fromID, ok := s.stopsByName[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, from)
	}
	toID, ok := s.stopsByName[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStop, to)
	}

	s.distances[stopPair{from: fromID, to: toID}] = meters
	return nil
}

// AddBus registers a bus over already registered stops.
func (s *Store) AddBus(name string, stopNames []string, isRoundtrip bool) (BusID, error) {
	if s.frozen {
		return 0, ErrFrozen
	}
	if _, exists := s.busesByName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateBus, name)
	}
	if len(stopNames) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrEmptyRoute, name)
	}

	stops := make([]StopID, 0, len(stopNames))
	for _, stopName := range stopNames {
		id, ok := s.stopsByName[stopName]
		if !ok {
			return 0, fmt.Errorf("bus %q: %w: %q", name, ErrUnknownStop, stopName)
		}
		stops = append(stops, id)
	}

	id := BusID(len(s.buses))
	bus := Bus{
		ID:          id,
		Name:        name,
		Stops:       stops,
		IsRoundtrip: isRoundtrip,
		route:       expandRoute(stops, isRoundtrip),
	}
	s.buses = append(s.buses, bus)
	s.busesByName[name] = id

	seen := make(map[StopID]struct{}, len(stops))
	for _, stop := range stops {
		if _, dup := seen[stop]; dup {
			continue
		}
		seen[stop] = struct{}{}
		s.busesByStop[stop] = append(s.busesByStop[stop], id)
	}

	return id, nil
}

// Freeze ends the registration phase. It is idempotent.
func (s *Store) Freeze() {
	if s.frozen {
		return
	}
	start := time.Now()

	for _, ids := range s.busesByStop {
		sort.Slice(ids, func(i, j int) bool {
			return s.buses[ids[i]].Name < s.buses[ids[j]].Name
		})
	}
	s.frozen = true

	logger := slog.Default().With(slog.String("component", "catalogue"))
	logging.LogOperation(logger, "catalogue_frozen",
		slog.Int("stops", len(s.stops)),
		slog.Int("buses", len(s.buses)),
		slog.Int("distances", len(s.distances)),
		slog.Duration("duration", time.Since(start)))
}

func (s *Store) Frozen() bool {
	return s.frozen
}

// FindStop looks a stop up by name.
func (s *Store) FindStop(name string) (Stop, bool) {
	id, ok := s.stopsByName[name]
	if !ok {
		return Stop{}, false
	}
	return s.stops[id], true
}

// FindBus looks a bus up by name.
func (s *Store) FindBus(name string) (Bus, bool) {
	id, ok := s.busesByName[name]
	if !ok {
		return Bus{}, false
	}
	return s.buses[id], true
}

// Stop returns the stop with the given ID. It panics on an ID not issued by this store.
func (s *Store) Stop(id StopID) Stop {
	return s.stops[id]
}

// Bus returns the bus with the given ID. It panics on an ID not issued by this store.
func (s *Store) Bus(id BusID) Bus {
	return s.buses[id]
}

// Stops returns every stop in registration order. The slice must not be modified.
func (s *Store) Stops() []Stop {
	return s.stops
}

// Buses returns every bus in registration order. The slice must not be modified.
func (s *Store) Buses() []Bus {
	return s.buses
}

func (s *Store) StopCount() int {
	return len(s.stops)
}

func (s *Store) BusCount() int {
	return len(s.buses)
}

// GetDistance returns the road distance in meters from one stop to another. A missing
// from->to entry falls back to to->from, and a pair with neither direction recorded is 0.
func (s *Store) GetDistance(from, to StopID) int {
	if d, ok := s.distances[stopPair{from: from, to: to}]; ok {
		return d
	}
	if d, ok := s.distances[stopPair{from: to, to: from}]; ok {
		return d
	}
	return 0
}

// GetBusInfo computes route statistics. Unknown buses report false and a zero BusInfo.
func (s *Store) GetBusInfo(name string) (BusInfo, bool) {
	id, ok := s.busesByName[name]
	if !ok {
		return BusInfo{}, false
	}

	route := s.buses[id].route
	unique := make(map[StopID]struct{}, len(route))
	for _, stop := range route {
		unique[stop] = struct{}{}
	}

	var roadLength, geoLength float64
	for i := 1; i < len(route); i++ {
		prev, cur := route[i-1], route[i]
		roadLength += float64(s.GetDistance(prev, cur))

		a, b := s.stops[prev].Coordinates, s.stops[cur].Coordinates
		geoLength += utils.GreatCircleDistance(a.Lat, a.Lng, b.Lat, b.Lng)
	}

	info := BusInfo{
		StopsCount:  len(route),
		UniqueStops: len(unique),
		RouteLength: roadLength,
	}
	if geoLength > 0 {
		info.Curvature = roadLength / geoLength
	}
	return info, true
}

// GetRoutesThroughStop returns the buses serving a stop, ordered by bus name once the
// store is frozen. A known stop without buses yields an empty, non-nil slice; an unknown
// stop yields false.
func (s *Store) GetRoutesThroughStop(name string) ([]BusID, bool) {
	id, ok := s.stopsByName[name]
	if !ok {
		return nil, false
	}

	buses := s.busesByStop[id]
	result := make([]BusID, len(buses))
	copy(result, buses)
	return result, true
}
