package restapi

import (
	"encoding/json"
	"net/http"

	"catalogue.onebusaway.org/internal/models"
)

// Envelope versions: authorization and server failures answer with version 1,
// everything else with version 2.
const (
	legacyEnvelopeVersion  = 1
	currentEnvelopeVersion = 2
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(&w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

// writeEnvelope writes a data-less envelope with the given status.
func (api *RestAPI) writeEnvelope(w http.ResponseWriter, r *http.Request, code int, text string, version int) {
	setJSONResponseType(&w)
	w.WriteHeader(code)

	response := models.ResponseModel{
		Code:        code,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Text:        text,
		Version:     version,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusNotFound, "resource not found")
}

func (api *RestAPI) sendUnauthorized(w http.ResponseWriter, r *http.Request) {
	api.writeEnvelope(w, r, http.StatusUnauthorized, "permission denied", legacyEnvelopeVersion)
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	api.writeEnvelope(w, r, code, message, currentEnvelopeVersion)
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
