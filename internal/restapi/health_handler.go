package restapi

import (
	"encoding/json"
	"net/http"

	"catalogue.onebusaway.org/internal/clock"
)

// HealthResponse is the body of /healthz. Network details are present only once
// the itinerary graph is built.
type HealthResponse struct {
	Status            string  `json:"status"`
	Detail            string  `json:"detail,omitempty"`
	Stops             int     `json:"stops,omitempty"`
	Buses             int     `json:"buses,omitempty"`
	NetworkAgeSeconds float64 `json:"networkAgeSeconds,omitempty"`
}

// healthHandler answers 503 until a network is loaded and its graph built. It
// skips API key checks so load balancers can probe it.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, body := api.health()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (api *RestAPI) health() (int, HealthResponse) {
	switch {
	case api.Application == nil || api.Manager == nil:
		return http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Detail: "network not loaded"}
	case !api.Manager.IsReady():
		return http.StatusServiceUnavailable, HealthResponse{Status: "starting", Detail: "itinerary graph is being built"}
	}

	c := api.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return http.StatusOK, HealthResponse{
		Status:            "ok",
		Stops:             len(api.Manager.GetStops()),
		Buses:             len(api.Manager.GetBuses()),
		NetworkAgeSeconds: clock.Since(c, api.Manager.LoadedAt()).Seconds(),
	}
}
