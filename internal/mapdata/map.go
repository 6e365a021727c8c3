// Package mapdata prepares everything an external renderer needs to draw the network:
// projected bus lines with their colors and labels, and the served stops.
package mapdata

import (
	"sort"

	"github.com/twpayne/go-polyline"

	"catalogue.onebusaway.org/internal/catalogue"
)

// Network is the read-only view of the catalogue the map is built from.
type Network interface {
	GetBuses() []catalogue.Bus
	Stop(id catalogue.StopID) catalogue.Stop
}

type Label struct {
	Text     string `json:"text"`
	StopName string `json:"stopName"`
	Position Point  `json:"position"`
}

type BusLine struct {
	Name        string  `json:"name"`
	Color       Color   `json:"color"`
	IsRoundtrip bool    `json:"isRoundtrip"`
	Points      []Point `json:"points"`
	// Polyline is the Google encoded polyline of the geographic path.
	Polyline string  `json:"polyline"`
	Labels   []Label `json:"labels"`
}

type StopMarker struct {
	Name     string  `json:"name"`
	Position Point   `json:"position"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Map is the renderer input. Buses and stops are both sorted by name.
type Map struct {
	Settings RenderSettings `json:"settings"`
	Buses    []BusLine      `json:"buses"`
	Stops    []StopMarker   `json:"stops"`
}

// Build projects the network onto the canvas described by settings.
func Build(network Network, settings RenderSettings) Map {
	buses := append([]catalogue.Bus(nil), network.GetBuses()...)
	sort.Slice(buses, func(i, j int) bool { return buses[i].Name < buses[j].Name })

	var coords []catalogue.Coordinates
	served := make(map[catalogue.StopID]struct{})
	for _, bus := range buses {
		for _, id := range bus.Stops {
			coords = append(coords, network.Stop(id).Coordinates)
			served[id] = struct{}{}
		}
	}
	projector := NewSphereProjector(coords, settings.Width, settings.Height, settings.Padding)

	result := Map{
		Settings: settings,
		Buses:    make([]BusLine, 0, len(buses)),
		Stops:    make([]StopMarker, 0, len(served)),
	}

	for index, bus := range buses {
		result.Buses = append(result.Buses, buildBusLine(network, projector, bus, paletteColor(settings.ColorPalette, index)))
	}

	for id := range served {
		stop := network.Stop(id)
		result.Stops = append(result.Stops, StopMarker{
			Name:     stop.Name,
			Position: projector.Project(stop.Coordinates),
			Lat:      stop.Coordinates.Lat,
			Lon:      stop.Coordinates.Lng,
		})
	}
	sort.Slice(result.Stops, func(i, j int) bool { return result.Stops[i].Name < result.Stops[j].Name })

	return result
}

func buildBusLine(network Network, projector SphereProjector, bus catalogue.Bus, color Color) BusLine {
	route := bus.Route()
	line := BusLine{
		Name:        bus.Name,
		Color:       color,
		IsRoundtrip: bus.IsRoundtrip,
		Points:      make([]Point, 0, len(route)),
	}

	coords := make([][]float64, 0, len(route))
	for _, id := range route {
		c := network.Stop(id).Coordinates
		line.Points = append(line.Points, projector.Project(c))
		coords = append(coords, []float64{c.Lat, c.Lng})
	}
	line.Polyline = string(polyline.EncodeCoords(coords))

	first := network.Stop(bus.Stops[0])
	line.Labels = append(line.Labels, Label{Text: bus.Name, StopName: first.Name, Position: projector.Project(first.Coordinates)})

	if !bus.IsRoundtrip {
		if terminal := bus.Terminal(); terminal != bus.Stops[0] {
			last := network.Stop(terminal)
			line.Labels = append(line.Labels, Label{Text: bus.Name, StopName: last.Name, Position: projector.Project(last.Coordinates)})
		}
	}

	return line
}

func paletteColor(palette []Color, index int) Color {
	if len(palette) == 0 {
		return NoColor
	}
	return palette[index%len(palette)]
}
