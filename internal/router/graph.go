package router

import (
	"log/slog"
	"time"

	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/logging"
)

// VertexKind distinguishes the two vertices every stop owns.
type VertexKind uint8

const (
	// Waiting is a passenger standing at the stop before boarding.
	Waiting VertexKind = iota
	// Boarded is a passenger on a vehicle departing the stop.
	Boarded
)

func (k VertexKind) String() string {
	switch k {
	case Waiting:
		return "waiting"
	case Boarded:
		return "boarded"
	default:
		return "unknown"
	}
}

type Vertex struct {
	Stop catalogue.StopID
	Kind VertexKind
}

// EdgeKind is the kind of leg an edge becomes in an itinerary.
type EdgeKind uint8

const (
	EdgeWait EdgeKind = iota
	EdgeBus
)

func (k EdgeKind) String() string {
	if k == EdgeBus {
		return "Bus"
	}
	return "Wait"
}

// Edge is a directed weighted edge. Weight is in minutes. Label is the stop name for
// wait edges and the bus name for ride edges; Span is the number of stops ridden.
type Edge struct {
	From   Vertex
	To     Vertex
	Weight float64
	Kind   EdgeKind
	Label  string
	Span   int
}

type EdgeID int

// Graph is the itinerary graph. It is immutable once built and safe for concurrent reads.
type Graph struct {
	edges []Edge
	// outgoing holds edge IDs per stop, one list per vertex kind.
	outgoing [2][][]EdgeID
	stops    int
}

// BuildGraph derives the itinerary graph from a frozen store.
func BuildGraph(store *catalogue.Store, settings Settings) (*Graph, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !store.Frozen() {
		return nil, ErrStoreNotFrozen
	}

	start := time.Now()
	stopCount := store.StopCount()
	g := &Graph{stops: stopCount}
	for kind := range g.outgoing {
		g.outgoing[kind] = make([][]EdgeID, stopCount)
	}

	for _, stop := range store.Stops() {
		g.addEdge(Edge{
			From:   Vertex{Stop: stop.ID, Kind: Waiting},
			To:     Vertex{Stop: stop.ID, Kind: Boarded},
			Weight: settings.BusWaitTime,
			Kind:   EdgeWait,
			Label:  stop.Name,
		})
	}

	speed := settings.metersPerMinute()
	for _, bus := range store.Buses() {
		route := bus.Route()
		for i := 0; i < len(route); i++ {
			distance := 0
			for j := i + 1; j < len(route); j++ {
				distance += store.GetDistance(route[j-1], route[j])
				g.addEdge(Edge{
					From:   Vertex{Stop: route[i], Kind: Boarded},
					To:     Vertex{Stop: route[j], Kind: Waiting},
					Weight: float64(distance) / speed,
					Kind:   EdgeBus,
					Label:  bus.Name,
					Span:   j - i,
				})
			}
		}
	}

	logger := slog.Default().With(slog.String("component", "router"))
	logging.LogOperation(logger, "itinerary_graph_built",
		slog.Int("vertices", g.VertexCount()),
		slog.Int("edges", g.EdgeCount()),
		slog.Duration("duration", time.Since(start)))

	return g, nil
}

func (g *Graph) addEdge(e Edge) {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.outgoing[e.From.Kind][e.From.Stop] = append(g.outgoing[e.From.Kind][e.From.Stop], id)
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id EdgeID) Edge {
	return g.edges[id]
}

// Edges returns every edge in insertion order. The slice must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Outgoing lists the IDs of the edges leaving v.
func (g *Graph) Outgoing(v Vertex) []EdgeID {
	return g.outgoing[v.Kind][v.Stop]
}

func (g *Graph) VertexCount() int {
	return 2 * g.stops
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

func (g *Graph) StopCount() int {
	return g.stops
}
