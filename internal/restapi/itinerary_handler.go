package restapi

import (
	"errors"
	"net/http"
	"time"

	"catalogue.onebusaway.org/internal/metrics"
	"catalogue.onebusaway.org/internal/models"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/transit"
	"catalogue.onebusaway.org/internal/utils"
)

func (api *RestAPI) itineraryHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := query.Get("from")
	to := query.Get("to")

	fieldErrors := make(map[string][]string)
	if err := utils.ValidateName(from); err != nil {
		fieldErrors["from"] = append(fieldErrors["from"], err.Error())
	}
	if err := utils.ValidateName(to); err != nil {
		fieldErrors["to"] = append(fieldErrors["to"], err.Error())
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	start := time.Now()
	itinerary, err := api.Manager.GetShortestItinerary(from, to)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, transit.ErrUnknownStop):
		api.recordItinerary(metrics.OutcomeUnknownStop, elapsed)
		api.sendNotFound(w, r)
		return
	case errors.Is(err, transit.ErrNoRoute):
		api.recordItinerary(metrics.OutcomeNoRoute, elapsed)
		api.sendError(w, r, http.StatusNotFound, "no itinerary found")
		return
	case err != nil:
		api.serverErrorResponse(w, r, err)
		return
	}
	api.recordItinerary(metrics.OutcomeFound, elapsed)

	references := models.NewEmptyReferences()
	busNames := make([]string, 0, len(itinerary.Legs))
	endpoints := []string{from}
	if to != from {
		endpoints = append(endpoints, to)
	}
	for _, name := range endpoints {
		stop, _ := api.Manager.FindStop(name)
		buses, _ := api.Manager.GetRoutesThroughStop(name)
		references.Stops = append(references.Stops, models.NewStop(stop, buses))
	}
	seen := make(map[string]struct{})
	for _, leg := range itinerary.Legs {
		if leg.Kind != router.EdgeBus {
			continue
		}
		if _, dup := seen[leg.Label]; dup {
			continue
		}
		seen[leg.Label] = struct{}{}
		busNames = append(busNames, leg.Label)
	}
	references.Buses = api.busReferences(busNames)

	entry := models.NewItinerary(from, to, itinerary)
	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.Clock))
}

func (api *RestAPI) recordItinerary(outcome string, elapsed time.Duration) {
	if api.Metrics == nil {
		return
	}
	api.Metrics.RecordItinerary(outcome, elapsed)
}
