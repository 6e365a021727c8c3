// Package ingest loads network descriptions into the catalogue.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/stats"
)

const (
	RequestTypeStop = "Stop"
	RequestTypeBus  = "Bus"
)

// BaseRequest is a Stop or Bus entry of base_requests. Stop entries use the coordinate
// and road distance fields, Bus entries use Stops and IsRoundtrip.
type BaseRequest struct {
	Type          string         `json:"type" yaml:"type"`
	Name          string         `json:"name" yaml:"name"`
	Latitude      float64        `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	RoadDistances map[string]int `json:"road_distances,omitempty" yaml:"road_distances,omitempty"`
	Stops         []string       `json:"stops,omitempty" yaml:"stops,omitempty"`
	IsRoundtrip   bool           `json:"is_roundtrip,omitempty" yaml:"is_roundtrip,omitempty"`
}

// RoutingSettings is the routing_settings section. Omitted fields stay nil so they
// can be taken from a fallback.
type RoutingSettings struct {
	BusWaitTime *float64 `json:"bus_wait_time,omitempty" yaml:"bus_wait_time,omitempty"`
	BusVelocity *float64 `json:"bus_velocity,omitempty" yaml:"bus_velocity,omitempty"`
}

// Document is a complete network description with optional settings and queries.
type Document struct {
	BaseRequests    []BaseRequest           `json:"base_requests" yaml:"base_requests"`
	RoutingSettings *RoutingSettings        `json:"routing_settings,omitempty" yaml:"routing_settings,omitempty"`
	RenderSettings  *mapdata.RenderSettings `json:"render_settings,omitempty" yaml:"render_settings,omitempty"`
	StatRequests    []stats.Request         `json:"stat_requests,omitempty" yaml:"stat_requests,omitempty"`
}

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks the decoder from a file extension. Anything that is not YAML is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML network document: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON network document: %w", err)
		}
	}
	return &doc, nil
}

// LoadFile reads a JSON or YAML network document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening network document: %w", err)
	}
	defer logging.SafeCloseWithLogging(f,
		slog.Default().With(slog.String("component", "ingest")),
		"network_document")

	return Decode(f, FormatForPath(path))
}

// Populate registers every stop, then every road distance, then every bus, so that
// entries may reference stops declared later in the document. The first failure aborts.
func (doc *Document) Populate(store *catalogue.Store) error {
	start := time.Now()

	for _, req := range doc.BaseRequests {
		if req.Type != RequestTypeStop {
			continue
		}
		if _, err := store.AddStop(req.Name, catalogue.Coordinates{Lat: req.Latitude, Lng: req.Longitude}); err != nil {
			return fmt.Errorf("stop %q: %w", req.Name, err)
		}
	}

	distances := 0
	for _, req := range doc.BaseRequests {
		if req.Type != RequestTypeStop {
			continue
		}
		// Sorted so that the first reported error does not depend on map order.
		others := make([]string, 0, len(req.RoadDistances))
		for other := range req.RoadDistances {
			others = append(others, other)
		}
		sort.Strings(others)

		for _, other := range others {
			if err := store.SetDistance(req.Name, other, req.RoadDistances[other]); err != nil {
				return fmt.Errorf("distance %q -> %q: %w", req.Name, other, err)
			}
			distances++
		}
	}

	buses := 0
	for _, req := range doc.BaseRequests {
		switch req.Type {
		case RequestTypeStop:
		case RequestTypeBus:
			if _, err := store.AddBus(req.Name, req.Stops, req.IsRoundtrip); err != nil {
				return err
			}
			buses++
		default:
			return fmt.Errorf("unknown base request type %q for %q", req.Type, req.Name)
		}
	}

	logger := slog.Default().With(slog.String("component", "ingest"))
	logging.LogOperation(logger, "network_document_applied",
		slog.Int("stops", store.StopCount()),
		slog.Int("distances", distances),
		slog.Int("buses", buses),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Routing overlays the fields present in the document's routing_settings on fallback.
func (doc *Document) Routing(fallback router.Settings) router.Settings {
	settings := fallback
	if doc.RoutingSettings == nil {
		return settings
	}
	if doc.RoutingSettings.BusWaitTime != nil {
		settings.BusWaitTime = *doc.RoutingSettings.BusWaitTime
	}
	if doc.RoutingSettings.BusVelocity != nil {
		settings.BusVelocity = *doc.RoutingSettings.BusVelocity
	}
	return settings
}

// Render returns the document's render settings, or fallback when it has none.
func (doc *Document) Render(fallback mapdata.RenderSettings) mapdata.RenderSettings {
	if doc.RenderSettings == nil {
		return fallback
	}
	return *doc.RenderSettings
}
