package router

import (
	"container/heap"
	"math"

	"catalogue.onebusaway.org/internal/catalogue"
)

// Leg is one step of an itinerary. Time is in minutes.
type Leg struct {
	Kind  EdgeKind
	Label string
	Span  int
	Time  float64
}

type Itinerary struct {
	Legs      []Leg
	TotalTime float64
}

// Router answers shortest itinerary queries over an immutable graph. It keeps no
// state between queries, so one Router may serve concurrent callers.
type Router struct {
	graph *Graph
}

func New(graph *Graph) *Router {
	return &Router{graph: graph}
}

func (r *Router) Graph() *Graph {
	return r.graph
}

// ShortestRoute finds the fastest itinerary between two stops, starting and ending
// in the waiting state. It reports false when to is unreachable from from.
// Asking for the route from a stop to itself yields an empty itinerary.
func (r *Router) ShortestRoute(from, to catalogue.StopID) (Itinerary, bool) {
	n := r.graph.StopCount()
	if int(from) < 0 || int(from) >= n || int(to) < 0 || int(to) >= n {
		return Itinerary{}, false
	}
	if from == to {
		return Itinerary{Legs: []Leg{}}, true
	}

	var dist [2][]float64
	var settled [2][]bool
	var prev [2][]EdgeID
	for kind := range dist {
		dist[kind] = make([]float64, n)
		settled[kind] = make([]bool, n)
		prev[kind] = make([]EdgeID, n)
		for i := range dist[kind] {
			dist[kind][i] = math.Inf(1)
			prev[kind][i] = -1
		}
	}

	source := Vertex{Stop: from, Kind: Waiting}
	target := Vertex{Stop: to, Kind: Waiting}
	dist[source.Kind][source.Stop] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	var seq uint64
	heap.Push(pq, &pqItem{vertex: source, priority: 0, seq: seq})

	found := false
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.vertex

		// Stale entry from an earlier, longer relaxation.
		if settled[current.Kind][current.Stop] {
			continue
		}
		settled[current.Kind][current.Stop] = true

		if current == target {
			found = true
			break
		}

		for _, id := range r.graph.Outgoing(current) {
			e := r.graph.Edge(id)
			if settled[e.To.Kind][e.To.Stop] {
				continue
			}
			tentative := item.priority + e.Weight
			if tentative < dist[e.To.Kind][e.To.Stop] {
				dist[e.To.Kind][e.To.Stop] = tentative
				prev[e.To.Kind][e.To.Stop] = id
				seq++
				heap.Push(pq, &pqItem{vertex: e.To, priority: tentative, seq: seq})
			}
		}
	}

	if !found {
		return Itinerary{}, false
	}

	return r.reconstruct(prev, target, dist[target.Kind][target.Stop]), true
}

func (r *Router) reconstruct(prev [2][]EdgeID, target Vertex, total float64) Itinerary {
	var path []EdgeID
	for v := target; prev[v.Kind][v.Stop] >= 0; {
		id := prev[v.Kind][v.Stop]
		path = append(path, id)
		v = r.graph.Edge(id).From
	}

	legs := make([]Leg, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		e := r.graph.Edge(path[i])
		legs = append(legs, Leg{Kind: e.Kind, Label: e.Label, Span: e.Span, Time: e.Weight})
	}

	return Itinerary{Legs: legs, TotalTime: total}
}

// pqItem orders by priority, then by push order so equal-weight paths resolve the same
// way on every run.
type pqItem struct {
	vertex   Vertex
	priority float64
	seq      uint64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
