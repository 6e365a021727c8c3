package restapi

import (
	"net/http"

	"catalogue.onebusaway.org/internal/models"
)

func (api *RestAPI) busHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := api.nameFromPath(w, r)
	if !ok {
		return
	}

	bus, found := api.Manager.FindBus(name)
	if !found {
		api.sendNotFound(w, r)
		return
	}
	info, _ := api.Manager.GetBusInfo(name)

	references := models.NewEmptyReferences()
	stopIDs := make([]string, 0, len(bus.Stops))
	seen := make(map[string]struct{}, len(bus.Stops))
	for _, id := range bus.Stops {
		stop := api.Manager.Stop(id)
		stopIDs = append(stopIDs, stop.Name)
		if _, dup := seen[stop.Name]; dup {
			continue
		}
		seen[stop.Name] = struct{}{}
		busNames, _ := api.Manager.GetRoutesThroughStop(stop.Name)
		references.Stops = append(references.Stops, models.NewStop(stop, busNames))
	}

	entry := models.Bus{
		ID:              bus.Name,
		IsRoundtrip:     bus.IsRoundtrip,
		StopIDs:         stopIDs,
		StopCount:       info.StopsCount,
		UniqueStopCount: info.UniqueStops,
		RouteLength:     info.RouteLength,
		Curvature:       info.Curvature,
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.Clock))
}
