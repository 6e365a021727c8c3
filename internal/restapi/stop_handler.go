package restapi

import (
	"net/http"

	"catalogue.onebusaway.org/internal/models"
)

func (api *RestAPI) busReferences(names []string) []models.BusReference {
	refs := make([]models.BusReference, 0, len(names))
	for _, name := range names {
		bus, ok := api.Manager.FindBus(name)
		if !ok {
			continue
		}
		refs = append(refs, models.BusReference{ID: bus.Name, IsRoundtrip: bus.IsRoundtrip})
	}
	return refs
}

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := api.nameFromPath(w, r)
	if !ok {
		return
	}

	stop, found := api.Manager.FindStop(name)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	busNames, _ := api.Manager.GetRoutesThroughStop(name)

	references := models.NewEmptyReferences()
	references.Buses = api.busReferences(busNames)

	response := models.NewEntryResponse(models.NewStop(stop, busNames), references, api.Clock)
	api.sendResponse(w, r, response)
}

func (api *RestAPI) routesForStopHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := api.nameFromPath(w, r)
	if !ok {
		return
	}

	busNames, found := api.Manager.GetRoutesThroughStop(name)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	stop, _ := api.Manager.FindStop(name)
	references := models.NewEmptyReferences()
	references.Stops = append(references.Stops, models.NewStop(stop, busNames))

	response := models.NewListResponse(api.busReferences(busNames), references, false, api.Clock)
	api.sendResponse(w, r, response)
}
