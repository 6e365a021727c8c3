package restapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogue.onebusaway.org/internal/metrics"
)

func itineraryURL(from, to string) string {
	query := url.Values{}
	query.Set("key", testAPIKey)
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}
	return "/api/where/itinerary.json?" + query.Encode()
}

func TestItineraryHandler(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, itineraryURL("Biryulyovo Zapadnoye", "Universam"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, "Biryulyovo Zapadnoye", entry["fromStopId"])
	assert.Equal(t, "Universam", entry["toStopId"])
	assert.InDelta(t, 12.45, entry["totalTime"], 1e-9)

	legs, ok := entry["legs"].([]interface{})
	require.True(t, ok)
	require.Len(t, legs, 2)

	wait := legs[0].(map[string]interface{})
	assert.Equal(t, "Wait", wait["type"])
	assert.Equal(t, "Biryulyovo Zapadnoye", wait["stopId"])
	assert.InDelta(t, 6.0, wait["time"], 1e-9)

	ride := legs[1].(map[string]interface{})
	assert.Equal(t, "Bus", ride["type"])
	assert.Equal(t, "297", ride["busId"])
	assert.Equal(t, float64(2), ride["spanCount"])
	assert.InDelta(t, 6.45, ride["time"], 1e-9)

	refs := referencesOf(t, model)
	buses := refs["buses"].([]interface{})
	assert.Equal(t, []string{"297"}, stringField(t, buses, "id"))
	stops := refs["stops"].([]interface{})
	assert.Equal(t, []string{"Biryulyovo Zapadnoye", "Universam"}, stringField(t, stops, "id"))

	assert.Equal(t, 1.0, testutil.ToFloat64(api.Metrics.ItineraryQueriesTotal.WithLabelValues(metrics.OutcomeFound)))
}

func TestItineraryHandler_SameStop(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, itineraryURL("Universam", "Universam"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, 0.0, entry["totalTime"])
	legs, ok := entry["legs"].([]interface{})
	require.True(t, ok, "legs must encode as an empty array")
	assert.Empty(t, legs)
}

func TestItineraryHandler_NoRoute(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, itineraryURL("Rasskazovka", "Universam"))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no itinerary found", model.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.Metrics.ItineraryQueriesTotal.WithLabelValues(metrics.OutcomeNoRoute)))
}

func TestItineraryHandler_UnknownStop(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, itineraryURL("Nowhere", "Universam"))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.Metrics.ItineraryQueriesTotal.WithLabelValues(metrics.OutcomeUnknownStop)))
}

func TestItineraryHandler_MissingParameters(t *testing.T) {
	api := createTestApi(t)
	mux := http.NewServeMux()
	api.SetRoutes(mux)

	resp, body := getBody(t, api.Handler(mux), itineraryURL("", "Universam"))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"fieldErrors"`)
	assert.Contains(t, body, `"from"`)
	assert.NotContains(t, body, `"to":[`)
}
