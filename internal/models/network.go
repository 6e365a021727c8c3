package models

import (
	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/router"
)

// Stop is a stop entry. Stops are identified by name.
type Stop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	RouteIDs []string `json:"routeIds"`
	// Distance is set by location searches, in meters.
	Distance *float64 `json:"distance,omitempty"`
}

func NewStop(stop catalogue.Stop, routeIDs []string) Stop {
	if routeIDs == nil {
		routeIDs = []string{}
	}
	return Stop{
		ID:       stop.Name,
		Name:     stop.Name,
		Lat:      stop.Coordinates.Lat,
		Lon:      stop.Coordinates.Lng,
		RouteIDs: routeIDs,
	}
}

type BusReference struct {
	ID          string `json:"id"`
	IsRoundtrip bool   `json:"isRoundtrip"`
}

// Bus is a bus entry with its route statistics.
type Bus struct {
	ID              string   `json:"id"`
	IsRoundtrip     bool     `json:"isRoundtrip"`
	StopIDs         []string `json:"stopIds"`
	StopCount       int      `json:"stopCount"`
	UniqueStopCount int      `json:"uniqueStopCount"`
	RouteLength     float64  `json:"routeLength"`
	Curvature       float64  `json:"curvature"`
}

// ItineraryLeg is a Wait or Bus step. Wait legs set StopID; Bus legs set BusID and SpanCount.
type ItineraryLeg struct {
	Type      string  `json:"type"`
	StopID    string  `json:"stopId,omitempty"`
	BusID     string  `json:"busId,omitempty"`
	SpanCount int     `json:"spanCount,omitempty"`
	Time      float64 `json:"time"`
}

type Itinerary struct {
	FromStopID string         `json:"fromStopId"`
	ToStopID   string         `json:"toStopId"`
	TotalTime  float64        `json:"totalTime"`
	Legs       []ItineraryLeg `json:"legs"`
}

func NewItinerary(from, to string, itinerary router.Itinerary) Itinerary {
	legs := make([]ItineraryLeg, 0, len(itinerary.Legs))
	for _, leg := range itinerary.Legs {
		item := ItineraryLeg{Type: leg.Kind.String(), Time: leg.Time}
		if leg.Kind == router.EdgeBus {
			item.BusID = leg.Label
			item.SpanCount = leg.Span
		} else {
			item.StopID = leg.Label
		}
		legs = append(legs, item)
	}

	return Itinerary{
		FromStopID: from,
		ToStopID:   to,
		TotalTime:  itinerary.TotalTime,
		Legs:       legs,
	}
}
