package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/utils"
)

const maxStaticSize = 200 * 1024 * 1024

// GTFSSource locates a static GTFS zip, either a local path or an http(s) URL.
type GTFSSource struct {
	Location        string
	AuthHeaderKey   string
	AuthHeaderValue string
}

func (s GTFSSource) isLocalFile() bool {
	return !strings.HasPrefix(s.Location, "http://") && !strings.HasPrefix(s.Location, "https://")
}

// LoadGTFS fetches and converts a static GTFS feed into a network document.
func LoadGTFS(ctx context.Context, source GTFSSource) (*Document, error) {
	b, err := rawGTFSData(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return ParseGTFS(b)
}

func rawGTFSData(ctx context.Context, source GTFSSource) ([]byte, error) {
	if source.isLocalFile() {
		b, err := os.ReadFile(source.Location)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GTFS request: %w", err)
	}
	if source.AuthHeaderKey != "" && source.AuthHeaderValue != "" {
		req.Header.Set(source.AuthHeaderKey, source.AuthHeaderValue)
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download GTFS data: received HTTP status %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	if int64(len(b)) > maxStaticSize {
		return nil, fmt.Errorf("static GTFS response exceeds size limit of %d bytes", maxStaticSize)
	}
	return b, nil
}

// ParseGTFS converts the bytes of a static GTFS zip into a network document.
func ParseGTFS(b []byte) (*Document, error) {
	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	return FromStatic(staticData), nil
}

// FromStatic builds a network document from parsed GTFS. Every route becomes a round
// trip bus over the stops of its longest trip. Road distances come from
// shape_dist_traveled when the feed has it and from great-circle distance otherwise.
// Stops without coordinates are dropped.
func FromStatic(staticData *gtfs.Static) *Document {
	logger := slog.Default().With(slog.String("component", "gtfs_importer"))
	doc := &Document{}

	stopNames := uniqueStopNames(staticData.Stops)
	stopIndex := make(map[string]int, len(stopNames))
	for _, stop := range staticData.Stops {
		name, ok := stopNames[stop.Id]
		if !ok {
			continue
		}
		stopIndex[stop.Id] = len(doc.BaseRequests)
		doc.BaseRequests = append(doc.BaseRequests, BaseRequest{
			Type:          RequestTypeStop,
			Name:          name,
			Latitude:      *stop.Latitude,
			Longitude:     *stop.Longitude,
			RoadDistances: map[string]int{},
		})
	}

	longest := longestTripPerRoute(staticData.Trips)
	routes := make([]*gtfs.Route, 0, len(longest))
	for i := range staticData.Routes {
		if _, ok := longest[staticData.Routes[i].Id]; ok {
			routes = append(routes, &staticData.Routes[i])
		}
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Id < routes[j].Id })

	usedBusNames := make(map[string]struct{}, len(routes))
	skipped := 0
	for _, route := range routes {
		stopTimes := append([]gtfs.ScheduledStopTime(nil), longest[route.Id].StopTimes...)
		sort.Slice(stopTimes, func(i, j int) bool { return stopTimes[i].StopSequence < stopTimes[j].StopSequence })

		var names []string
		var prev *gtfs.ScheduledStopTime
		for i := range stopTimes {
			st := &stopTimes[i]
			if st.Stop == nil {
				continue
			}
			idx, ok := stopIndex[st.Stop.Id]
			if !ok {
				continue
			}
			if prev != nil && prev.Stop.Id == st.Stop.Id {
				continue
			}

			if prev != nil {
				from := &doc.BaseRequests[stopIndex[prev.Stop.Id]]
				to := doc.BaseRequests[idx]
				if _, exists := from.RoadDistances[to.Name]; !exists {
					from.RoadDistances[to.Name] = roadDistance(prev, st, from.Latitude, from.Longitude, to.Latitude, to.Longitude)
				}
			}

			names = append(names, doc.BaseRequests[idx].Name)
			prev = st
		}

		if len(names) == 0 {
			skipped++
			continue
		}

		doc.BaseRequests = append(doc.BaseRequests, BaseRequest{
			Type:        RequestTypeBus,
			Name:        busName(route, usedBusNames),
			Stops:       names,
			IsRoundtrip: true,
		})
	}

	logging.LogOperation(logger, "gtfs_converted",
		slog.Int("stops", len(stopIndex)),
		slog.Int("buses", len(routes)-skipped),
		slog.Int("routes_skipped", skipped))

	return doc
}

// uniqueStopNames maps stop IDs to catalogue names. Stops sharing a name get their ID appended.
func uniqueStopNames(stops []gtfs.Stop) map[string]string {
	counts := make(map[string]int, len(stops))
	for _, stop := range stops {
		if stop.Latitude == nil || stop.Longitude == nil {
			continue
		}
		counts[stopDisplayName(stop)]++
	}

	names := make(map[string]string, len(stops))
	for _, stop := range stops {
		if stop.Latitude == nil || stop.Longitude == nil {
			continue
		}
		name := stopDisplayName(stop)
		if counts[name] > 1 {
			name = fmt.Sprintf("%s [%s]", name, stop.Id)
		}
		names[stop.Id] = name
	}
	return names
}

func stopDisplayName(stop gtfs.Stop) string {
	if stop.Name != "" {
		return stop.Name
	}
	return stop.Id
}

func busName(route *gtfs.Route, used map[string]struct{}) string {
	name := route.ShortName
	if name == "" {
		name = route.Id
	}
	if _, taken := used[name]; taken {
		name = fmt.Sprintf("%s [%s]", name, route.Id)
	}
	used[name] = struct{}{}
	return name
}

// longestTripPerRoute keeps the trip with the most stop times per route, breaking ties by trip ID.
func longestTripPerRoute(trips []gtfs.ScheduledTrip) map[string]*gtfs.ScheduledTrip {
	longest := make(map[string]*gtfs.ScheduledTrip)
	for i := range trips {
		trip := &trips[i]
		if trip.Route == nil || len(trip.StopTimes) == 0 {
			continue
		}
		current, ok := longest[trip.Route.Id]
		if !ok || len(trip.StopTimes) > len(current.StopTimes) ||
			(len(trip.StopTimes) == len(current.StopTimes) && trip.ID < current.ID) {
			longest[trip.Route.Id] = trip
		}
	}
	return longest
}

func roadDistance(from, to *gtfs.ScheduledStopTime, fromLat, fromLon, toLat, toLon float64) int {
	if from.ShapeDistanceTraveled != nil && to.ShapeDistanceTraveled != nil {
		if delta := *to.ShapeDistanceTraveled - *from.ShapeDistanceTraveled; delta > 0 {
			return int(math.Round(delta))
		}
	}
	return int(math.Round(utils.GreatCircleDistance(fromLat, fromLon, toLat, toLon)))
}
