package restapi

import (
	"encoding/json"
	"net/http"

	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/models"
	"catalogue.onebusaway.org/internal/utils"
)

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err)

	response := models.ResponseModel{
		Code:        http.StatusInternalServerError,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Text:        "internal server error",
		Version:     legacyEnvelopeVersion,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if encoderErr := json.NewEncoder(w).Encode(response); encoderErr != nil {
		logging.LogError(api.Logger, "failed to encode server error response", encoderErr)
	}
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		FieldErrors map[string][]string `json:"fieldErrors"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		FieldErrors: fieldErrors,
		Text:        "invalid request",
		Version:     currentEnvelopeVersion,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.Logger, "failed to encode validation error response", err)
	}
}

// nameFromPath reads the {name} path value of a stop or bus route, accepting an
// optional .json suffix. An invalid name has already been answered with a 400.
func (api *RestAPI) nameFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := utils.TrimJSONSuffix(r.PathValue("name"))
	if err := utils.ValidateName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"name": {err.Error()}})
		return "", false
	}
	return name, true
}
