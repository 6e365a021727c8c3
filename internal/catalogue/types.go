package catalogue

// StopID is the arena index of a stop. IDs are dense and assigned in registration order.
type StopID int

// BusID is the arena index of a bus route.
type BusID int

// Coordinates is a geographic position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type Stop struct {
	ID          StopID
	Name        string
	Coordinates Coordinates
}

// Bus is a named route. Stops holds the sequence as registered; for a bus that is
// not a round trip the vehicle also drives it backwards, see Route.
type Bus struct {
	ID          BusID
	Name        string
	Stops       []StopID
	IsRoundtrip bool

	route []StopID
}

// Route returns the effective stop sequence: Stops itself for a round trip, otherwise
// the outbound path followed by the way back to the origin.
// The returned slice is shared and must not be modified.
func (b Bus) Route() []StopID {
	return b.route
}

// Terminal returns the far end of a non-round-trip route, which is the last registered stop.
func (b Bus) Terminal() StopID {
	return b.Stops[len(b.Stops)-1]
}

// BusInfo holds statistics derived from a bus's effective route.
type BusInfo struct {
	StopsCount  int
	UniqueStops int
	RouteLength float64
	Curvature   float64
}

type stopPair struct {
	from StopID
	to   StopID
}

// expandRoute materializes the way back of a non-round-trip bus:
// [s0, s1, s2] becomes [s0, s1, s2, s1, s0].
func expandRoute(stops []StopID, isRoundtrip bool) []StopID {
	if isRoundtrip {
		route := make([]StopID, len(stops))
		copy(route, stops)
		return route
	}

	route := make([]StopID, 0, 2*len(stops)-1)
	route = append(route, stops...)
	for i := len(stops) - 2; i >= 0; i-- {
		route = append(route, stops[i])
	}
	return route
}
