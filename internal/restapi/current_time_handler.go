package restapi

import (
	"net/http"

	"catalogue.onebusaway.org/internal/models"
)

// currentTimeHandler reports the server clock. It is the only endpoint whose
// answer does not derive from the network.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := api.Clock.Now()
	api.sendResponse(w, r, models.NewOKResponse(models.NewCurrentTimeData(now), api.Clock))
}
