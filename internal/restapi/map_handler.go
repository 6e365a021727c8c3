package restapi

import (
	"net/http"

	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/models"
)

// mapHandler returns the projected geometry and styling an external renderer
// needs to draw the network.
func (api *RestAPI) mapHandler(w http.ResponseWriter, r *http.Request) {
	networkMap := mapdata.Build(api.Manager, api.RenderSettings)
	api.sendResponse(w, r, models.NewEntryResponse(networkMap, models.NewEmptyReferences(), api.Clock))
}
