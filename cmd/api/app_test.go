package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/router"
)

var testNetworkPath = filepath.Join("..", "..", "testdata", "network.json")

func float64Ptr(v float64) *float64 {
	return &v
}

// writeBareNetwork writes a network document without routing_settings.
func writeBareNetwork(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bare.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_requests": [
		{"type": "Stop", "name": "A", "latitude": 55.6, "longitude": 37.2, "road_distances": {"B": 1000}},
		{"type": "Stop", "name": "B", "latitude": 55.61, "longitude": 37.2},
		{"type": "Bus", "name": "1", "stops": ["A", "B"], "is_roundtrip": false}
	]}`), 0644))
	return path
}

func testConfig(port int) appconf.Config {
	return appconf.Config{
		Port:           port,
		Env:            appconf.Test,
		ApiKeys:        []string{"test"},
		Verbose:        false,
		RateLimit:      100,
		NetworkPath:    testNetworkPath,
		BusWaitTime:    float64Ptr(1),
		BusVelocity:    float64Ptr(1),
		RequestTimeout: 5 * time.Second,
	}
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Single key",
			input:    "test-key",
			expected: []string{"test-key"},
		},
		{
			name:     "Multiple keys",
			input:    "key1,key2,key3",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "Keys with spaces",
			input:    " key1 , key2 , key3 ",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "Empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "Keys with mixed whitespace",
			input:    "key1,  key2  ,   key3",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "Single key with whitespace",
			input:    "  test-key  ",
			expected: []string{"test-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAPIKeys(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseAPIKeysEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Only commas",
			input:    ",,,",
			expected: []string{"", "", "", ""},
		},
		{
			name:     "Commas with spaces",
			input:    " , , , ",
			expected: []string{"", "", "", ""},
		},
		{
			name:     "Single comma",
			input:    ",",
			expected: []string{"", ""},
		},
		{
			name:     "Trailing comma",
			input:    "key1,",
			expected: []string{"key1", ""},
		},
		{
			name:     "Leading comma",
			input:    ",key1",
			expected: []string{"", "key1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAPIKeys(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestBuildApplicationWithNetworkDocument(t *testing.T) {
	cfg := testConfig(4000)

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err, "BuildApplication should not return an error")
	defer coreApp.Metrics.Shutdown()

	assert.NotNil(t, coreApp.Logger, "Logger should be initialized")
	assert.Equal(t, cfg, coreApp.Config, "Config should match input")
	require.NotNil(t, coreApp.Manager)
	assert.True(t, coreApp.Manager.IsReady())
	assert.Len(t, coreApp.Manager.GetStops(), 4)
	assert.Len(t, coreApp.Manager.GetBuses(), 2)

	// The document's routing_settings win over the configured fallback.
	assert.Equal(t, 6.0, coreApp.Manager.Settings().BusWaitTime)
	assert.Equal(t, 40.0, coreApp.Manager.Settings().BusVelocity)
	assert.Equal(t, 600.0, coreApp.RenderSettings.Width)
}

func TestParseFlags(t *testing.T) {
	t.Run("routing flags left unset", func(t *testing.T) {
		cfg, configFile, err := parseFlags([]string{"-network", "n.json"}, io.Discard)
		require.NoError(t, err)
		assert.Empty(t, configFile)
		assert.Nil(t, cfg.BusWaitTime)
		assert.Nil(t, cfg.BusVelocity)
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, []string{"test"}, cfg.ApiKeys)
	})

	t.Run("explicit zero wait time", func(t *testing.T) {
		cfg, _, err := parseFlags([]string{"-network", "n.json", "-bus-wait-time=0", "-bus-velocity=25"}, io.Discard)
		require.NoError(t, err)
		require.NotNil(t, cfg.BusWaitTime)
		require.NotNil(t, cfg.BusVelocity)
		assert.Equal(t, 0.0, *cfg.BusWaitTime)
		assert.Equal(t, 25.0, *cfg.BusVelocity)
	})

	t.Run("config file short-circuits", func(t *testing.T) {
		_, configFile, err := parseFlags([]string{"-config", "cfg.yaml"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "cfg.yaml", configFile)
	})

	t.Run("requires exactly one source", func(t *testing.T) {
		_, _, err := parseFlags([]string{}, io.Discard)
		assert.ErrorIs(t, err, errNoNetworkSource)

		_, _, err = parseFlags([]string{"-network", "n.json", "-gtfs", "g.zip"}, io.Discard)
		assert.ErrorIs(t, err, errNoNetworkSource)
	})

	t.Run("rejects unknown flags", func(t *testing.T) {
		_, _, err := parseFlags([]string{"-bogus"}, io.Discard)
		assert.Error(t, err)
	})
}

func TestBuildApplicationRoutingFallback(t *testing.T) {
	t.Run("zero wait time from flags is honoured", func(t *testing.T) {
		cfg, _, err := parseFlags([]string{"-network", writeBareNetwork(t), "-bus-wait-time=0"}, io.Discard)
		require.NoError(t, err)

		coreApp, err := BuildApplication(cfg)
		require.NoError(t, err)
		defer coreApp.Metrics.Shutdown()

		assert.Equal(t, 0.0, coreApp.Manager.Settings().BusWaitTime)
		assert.Equal(t, 40.0, coreApp.Manager.Settings().BusVelocity)
	})

	t.Run("defaults when nothing is configured", func(t *testing.T) {
		cfg := testConfig(4000)
		cfg.NetworkPath = writeBareNetwork(t)
		cfg.BusWaitTime = nil
		cfg.BusVelocity = nil

		coreApp, err := BuildApplication(cfg)
		require.NoError(t, err)
		defer coreApp.Metrics.Shutdown()

		assert.Equal(t, router.DefaultSettings(), coreApp.Manager.Settings())
	})

	t.Run("invalid configured velocity is rejected", func(t *testing.T) {
		cfg := testConfig(4000)
		cfg.NetworkPath = writeBareNetwork(t)
		cfg.BusVelocity = float64Ptr(0)

		_, err := BuildApplication(cfg)
		assert.ErrorIs(t, err, router.ErrInvalidSettings)
	})
}

func TestBuildApplicationErrorHandling(t *testing.T) {
	t.Run("handles missing network document", func(t *testing.T) {
		cfg := testConfig(4000)
		cfg.NetworkPath = "/nonexistent/path/to/network.json"

		_, err := BuildApplication(cfg)
		assert.Error(t, err, "Should return error for invalid network path")
		assert.Contains(t, err.Error(), "failed to load network")
	})

	t.Run("handles missing GTFS feed", func(t *testing.T) {
		cfg := testConfig(4000)
		cfg.NetworkPath = ""
		cfg.GtfsPath = "/nonexistent/path/to/gtfs.zip"

		_, err := BuildApplication(cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load network")
	})

	t.Run("handles no source", func(t *testing.T) {
		cfg := testConfig(4000)
		cfg.NetworkPath = ""

		_, err := BuildApplication(cfg)
		assert.ErrorContains(t, err, "no network source configured")
	})

	t.Run("handles bus referencing unknown stop", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"base_requests": [
			{"type": "Bus", "name": "1", "stops": ["Nowhere"], "is_roundtrip": true}
		]}`), 0644))

		cfg := testConfig(4000)
		cfg.NetworkPath = path

		_, err := BuildApplication(cfg)
		assert.ErrorContains(t, err, "failed to populate network")
	})
}

func TestCreateServer(t *testing.T) {
	cfg := testConfig(8080)

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err, "BuildApplication should not fail")
	defer coreApp.Metrics.Shutdown()

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	assert.NotNil(t, srv, "Server should not be nil")
	assert.Equal(t, ":8080", srv.Addr, "Server address should match port")
	assert.NotNil(t, srv.Handler, "Server handler should be set")
	assert.Equal(t, time.Minute, srv.IdleTimeout, "IdleTimeout should be 1 minute")
	assert.Equal(t, 5*time.Second, srv.ReadTimeout, "ReadTimeout should be 5 seconds")
	assert.Equal(t, 10*time.Second, srv.WriteTimeout, "WriteTimeout should be 10 seconds")
}

func TestCreateServerHandlerResponds(t *testing.T) {
	cfg := testConfig(8080)

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err, "BuildApplication should not fail")
	defer coreApp.Metrics.Shutdown()

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	t.Run("api", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/where/itinerary.json?key=test&from=Biryulyovo%20Zapadnoye&to=Universam", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		var body struct {
			Data struct {
				Entry struct {
					TotalTime float64 `json:"totalTime"`
				} `json:"entry"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.InDelta(t, 12.45, body.Data.Entry.TotalTime, 1e-9)
	})

	t.Run("debug pages outside production", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/?dataType=buses", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "catalogue_stops")
	})
}

func TestRunWithPortZeroAndImmediateShutdown(t *testing.T) {
	cfg := testConfig(0)

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err)
	defer coreApp.Metrics.Shutdown()

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	done := make(chan error, 1)
	go func() {
		go func() {
			time.Sleep(50 * time.Millisecond)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			done <- err
		} else {
			done <- nil
		}
	}()

	select {
	case err := <-done:
		assert.NoError(t, err, "Server should shutdown cleanly")
	case <-time.After(10 * time.Second):
		t.Fatal("Test timeout - server did not shutdown")
	}
}

func TestConfigFileLoading(t *testing.T) {
	t.Run("loads valid config file", func(t *testing.T) {
		jsonConfig, err := appconf.LoadFromFile("../../testdata/config_valid.json")
		require.NoError(t, err)
		require.NotNil(t, jsonConfig)

		appCfg := jsonConfig.ToAppConfig()

		assert.Equal(t, 3000, appCfg.Port)
		assert.Equal(t, appconf.Development, appCfg.Env)
		assert.Equal(t, []string{"test"}, appCfg.ApiKeys)
		assert.Equal(t, 100, appCfg.RateLimit)
		assert.True(t, appCfg.Verbose)
		assert.Equal(t, "testdata/network.json", appCfg.NetworkPath)
		assert.Equal(t, 5*time.Second, appCfg.RequestTimeout)
	})

	t.Run("loads YAML config file", func(t *testing.T) {
		yamlConfig, err := appconf.LoadFromFile("../../testdata/config_valid.yaml")
		require.NoError(t, err)

		appCfg := yamlConfig.ToAppConfig()
		assert.Equal(t, appconf.Production, appCfg.Env)
		assert.Equal(t, []string{"alpha", "beta"}, appCfg.ApiKeys)
		assert.Equal(t, 50, appCfg.RateLimit)
		assert.Equal(t, "testdata/gtfs.zip", appCfg.GtfsPath)
	})

	t.Run("fails on invalid config file", func(t *testing.T) {
		jsonConfig, err := appconf.LoadFromFile("../../testdata/config_invalid.json")
		assert.Error(t, err)
		assert.Nil(t, jsonConfig)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("fails on malformed JSON", func(t *testing.T) {
		jsonConfig, err := appconf.LoadFromFile("../../testdata/config_malformed.json")
		assert.Error(t, err)
		assert.Nil(t, jsonConfig)
		assert.Contains(t, err.Error(), "failed to parse JSON config")
	})

	t.Run("fails on nonexistent file", func(t *testing.T) {
		jsonConfig, err := appconf.LoadFromFile("../../testdata/nonexistent.json")
		assert.Error(t, err)
		assert.Nil(t, jsonConfig)
		assert.Contains(t, err.Error(), "failed to stat config file")
	})
}

func TestBuildApplicationWithConfigFile(t *testing.T) {
	absNetworkPath, err := filepath.Abs(testNetworkPath)
	require.NoError(t, err)

	testConfigPath := filepath.Join(t.TempDir(), "config_test_build.yaml")
	testConfigContent := "port: 5000\n" +
		"env: test\n" +
		"api-keys: [test-key]\n" +
		"rate-limit: 50\n" +
		"network-path: " + filepath.ToSlash(absNetworkPath) + "\n"
	require.NoError(t, os.WriteFile(testConfigPath, []byte(testConfigContent), 0644))

	fileCfg, err := appconf.LoadFromFile(testConfigPath)
	require.NoError(t, err)
	cfg := fileCfg.ToAppConfig()

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err)
	defer coreApp.Metrics.Shutdown()

	assert.NotNil(t, coreApp.Logger)
	assert.NotNil(t, coreApp.Manager)
	assert.Equal(t, 5000, coreApp.Config.Port)
	assert.Equal(t, appconf.Test, coreApp.Config.Env)
	assert.Equal(t, []string{"test-key"}, coreApp.Config.ApiKeys)
	assert.Equal(t, 50, coreApp.Config.RateLimit)
}
