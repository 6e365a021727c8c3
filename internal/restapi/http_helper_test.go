package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"catalogue.onebusaway.org/internal/app"
	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/clock"
	"catalogue.onebusaway.org/internal/ingest"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/metrics"
	"catalogue.onebusaway.org/internal/models"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/transit"
)

const testAPIKey = "test"

// createTestApplication loads testdata/network.json: stops Biryulyovo Zapadnoye,
// Biryusinka, Universam and an unserved Rasskazovka; round-trip bus 297 and
// out-and-back bus 635.
func createTestApplication(t *testing.T, c clock.Clock) *app.Application {
	t.Helper()

	doc, err := ingest.LoadFile(filepath.Join("..", "..", "testdata", "network.json"))
	require.NoError(t, err)

	store := catalogue.NewStore()
	require.NoError(t, doc.Populate(store))

	manager, err := transit.InitManager(store, doc.Routing(router.DefaultSettings()))
	require.NoError(t, err)

	return &app.Application{
		Config: appconf.Config{
			Env:         appconf.Test,
			ApiKeys:     []string{testAPIKey},
			RateLimit:   100,
			NetworkPath: "testdata/network.json",
		},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Manager:        manager,
		RenderSettings: doc.Render(mapdata.DefaultRenderSettings()),
		Clock:          c,
		Metrics:        metrics.New(),
	}
}

func createTestApiWithClock(t *testing.T, c clock.Clock) *RestAPI {
	t.Helper()
	api := NewRestAPI(createTestApplication(t, c))
	t.Cleanup(api.Shutdown)
	return api
}

func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithClock(t, clock.RealClock{})
}

// serveApiAndRetrieveEndpoint sends a GET through the full middleware chain and
// decodes the response envelope.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(api.Handler(mux))
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var model models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &model), "body: %s", body)
	return resp, model
}

// getBody serves a single request against handler without a network round trip.
func getBody(t *testing.T, handler http.Handler, endpoint string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, endpoint, nil))
	return rec.Result(), rec.Body.String()
}

func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	t.Helper()
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

// entryOf returns data.entry from a decoded envelope.
func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", model.Data)
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "entry is %T", data["entry"])
	return entry
}

// listOf returns data.list and data.limitExceeded from a decoded envelope.
func listOf(t *testing.T, model models.ResponseModel) ([]interface{}, bool) {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", model.Data)
	list, ok := data["list"].([]interface{})
	require.True(t, ok, "list is %T", data["list"])
	limitExceeded, _ := data["limitExceeded"].(bool)
	return list, limitExceeded
}

func referencesOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	refs, ok := data["references"].(map[string]interface{})
	require.True(t, ok)
	return refs
}

// stringField collects key from every object in list.
func stringField(t *testing.T, list []interface{}, key string) []string {
	t.Helper()
	values := make([]string, 0, len(list))
	for i, item := range list {
		object, ok := item.(map[string]interface{})
		require.True(t, ok, "item %d is %T", i, item)
		value, ok := object[key].(string)
		require.True(t, ok, "item %d key %q is %T", i, key, object[key])
		values = append(values, value)
	}
	return values
}

func toStrings(t *testing.T, value interface{}) []string {
	t.Helper()
	items, ok := value.([]interface{})
	require.True(t, ok, "value is %T", value)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		require.True(t, ok)
		out = append(out, s)
	}
	return out
}
