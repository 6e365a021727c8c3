package restapi

import (
	"net/http"
	"strconv"

	"catalogue.onebusaway.org/internal/models"
	"catalogue.onebusaway.org/internal/utils"
)

const defaultMaxStopsForLocation = 100

func (api *RestAPI) stopsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	radius, _ := utils.ParseFloatParam(queryParams, "radius", fieldErrors)

	for _, key := range []string{"lat", "lon"} {
		if queryParams.Get(key) == "" {
			fieldErrors[key] = append(fieldErrors[key], "Missing required field \""+key+"\".")
		}
	}

	maxCount := defaultMaxStopsForLocation
	if raw := queryParams.Get("maxCount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			fieldErrors["maxCount"] = append(fieldErrors["maxCount"], "maxCount must be a positive integer")
		} else {
			maxCount = parsed
		}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if locationErrors := utils.ValidateLocationParams(lat, lon, radius); len(locationErrors) > 0 {
		api.validationErrorResponse(w, r, locationErrors)
		return
	}

	// One extra result tells us whether the list was truncated.
	nearby := api.Manager.GetStopsForLocation(lat, lon, radius, maxCount+1)
	limitExceeded := len(nearby) > maxCount
	if limitExceeded {
		nearby = nearby[:maxCount]
	}

	results := make([]models.Stop, 0, len(nearby))
	busSet := make(map[string]struct{})
	var busNames []string
	for _, candidate := range nearby {
		buses, _ := api.Manager.GetRoutesThroughStop(candidate.Stop.Name)
		stop := models.NewStop(candidate.Stop, buses)
		distance := candidate.Distance
		stop.Distance = &distance
		results = append(results, stop)

		for _, bus := range buses {
			if _, seen := busSet[bus]; !seen {
				busSet[bus] = struct{}{}
				busNames = append(busNames, bus)
			}
		}
	}

	references := models.NewEmptyReferences()
	references.Buses = api.busReferences(busNames)

	api.sendResponse(w, r, models.NewListResponse(results, references, limitExceeded, api.Clock))
}
