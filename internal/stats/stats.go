// Package stats answers the stat_requests section of a network document.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/transit"
)

const notFound = "not found"

// Request is one stat query. Name is used by Stop and Bus requests, From and To by
// Route requests; Map requests carry only an ID.
type Request struct {
	ID   int    `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
}

type ErrorResponse struct {
	ErrorMessage string `json:"error_message"`
	RequestID    int    `json:"request_id"`
}

type StopResponse struct {
	Buses     []string `json:"buses"`
	RequestID int      `json:"request_id"`
}

type BusResponse struct {
	Curvature       float64 `json:"curvature"`
	RequestID       int     `json:"request_id"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

// RouteItem is a Wait or Bus step. Wait items set StopName; Bus items set Bus and SpanCount.
type RouteItem struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

type RouteResponse struct {
	Items     []RouteItem `json:"items"`
	RequestID int         `json:"request_id"`
	TotalTime float64     `json:"total_time"`
}

type MapResponse struct {
	Map       mapdata.Map `json:"map"`
	RequestID int         `json:"request_id"`
}

// Catalogue is what the processor needs from the query facade.
type Catalogue interface {
	mapdata.Network
	GetBusInfo(name string) (catalogue.BusInfo, bool)
	GetRoutesThroughStop(name string) ([]string, bool)
	GetShortestItinerary(from, to string) (router.Itinerary, error)
}

type Processor struct {
	catalogue Catalogue
	render    mapdata.RenderSettings
	logger    *slog.Logger
}

func NewProcessor(c Catalogue, render mapdata.RenderSettings, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		catalogue: c,
		render:    render,
		logger:    logger.With(slog.String("component", "stats")),
	}
}

// Process answers every request in order. Misses become error responses; nothing aborts the batch.
func (p *Processor) Process(requests []Request) []any {
	responses := make([]any, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, p.Handle(req))
	}

	logging.LogOperation(p.logger, "stat_requests_processed",
		slog.Int("count", len(requests)))
	return responses
}

func (p *Processor) Handle(req Request) any {
	switch req.Type {
	case "Stop":
		return p.stop(req)
	case "Bus":
		return p.bus(req)
	case "Route":
		return p.route(req)
	case "Map":
		return MapResponse{Map: mapdata.Build(p.catalogue, p.render), RequestID: req.ID}
	default:
		p.logger.Warn("unknown stat request type", slog.String("type", req.Type), slog.Int("request_id", req.ID))
		return ErrorResponse{ErrorMessage: fmt.Sprintf("unknown request type %q", req.Type), RequestID: req.ID}
	}
}

func (p *Processor) stop(req Request) any {
	buses, ok := p.catalogue.GetRoutesThroughStop(req.Name)
	if !ok {
		return ErrorResponse{ErrorMessage: notFound, RequestID: req.ID}
	}
	return StopResponse{Buses: buses, RequestID: req.ID}
}

func (p *Processor) bus(req Request) any {
	info, ok := p.catalogue.GetBusInfo(req.Name)
	if !ok {
		return ErrorResponse{ErrorMessage: notFound, RequestID: req.ID}
	}
	return BusResponse{
		Curvature:       info.Curvature,
		RequestID:       req.ID,
		RouteLength:     int(info.RouteLength),
		StopCount:       info.StopsCount,
		UniqueStopCount: info.UniqueStops,
	}
}

func (p *Processor) route(req Request) any {
	itinerary, err := p.catalogue.GetShortestItinerary(req.From, req.To)
	if err != nil {
		if !errors.Is(err, transit.ErrNoRoute) && !errors.Is(err, transit.ErrUnknownStop) {
			logging.LogError(p.logger, "itinerary lookup failed", err, slog.Int("request_id", req.ID))
		}
		return ErrorResponse{ErrorMessage: notFound, RequestID: req.ID}
	}

	return RouteResponse{
		Items:     RouteItems(itinerary),
		RequestID: req.ID,
		TotalTime: itinerary.TotalTime,
	}
}

// RouteItems converts itinerary legs into Wait and Bus items.
func RouteItems(itinerary router.Itinerary) []RouteItem {
	items := make([]RouteItem, 0, len(itinerary.Legs))
	for _, leg := range itinerary.Legs {
		item := RouteItem{Type: leg.Kind.String(), Time: leg.Time}
		if leg.Kind == router.EdgeBus {
			item.Bus = leg.Label
			item.SpanCount = leg.Span
		} else {
			item.StopName = leg.Label
		}
		items = append(items, item)
	}
	return items
}

// Write encodes the responses as a JSON array.
func Write(w io.Writer, responses []any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(responses); err != nil {
		return fmt.Errorf("failed to encode stat responses: %w", err)
	}
	return nil
}
