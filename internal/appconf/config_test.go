package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Development, EnvFlagToEnvironment("development"))
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Production, EnvFlagToEnvironment("production"))
	assert.Equal(t, Development, EnvFlagToEnvironment("staging"))

	assert.Equal(t, "production", Production.String())
	assert.Equal(t, "test", Test.String())
	assert.Equal(t, "development", Development.String())
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "port": 8080,
  "env": "production",
  "api-keys": ["key1", "key2"],
  "rate-limit": 50,
  "exempt-api-keys": ["key2"],
  "network-path": "/data/network.json",
  "bus-wait-time": 4,
  "bus-velocity": 30,
  "request-timeout": "5s"
}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	appCfg := cfg.ToAppConfig()
	assert.Equal(t, 8080, appCfg.Port)
	assert.Equal(t, Production, appCfg.Env)
	assert.Equal(t, []string{"key1", "key2"}, appCfg.ApiKeys)
	assert.Equal(t, 50, appCfg.RateLimit)
	assert.Equal(t, []string{"key2"}, appCfg.ExemptApiKeys)
	assert.Equal(t, "/data/network.json", appCfg.NetworkPath)
	require.NotNil(t, appCfg.BusWaitTime)
	require.NotNil(t, appCfg.BusVelocity)
	assert.Equal(t, 4.0, *appCfg.BusWaitTime)
	assert.Equal(t, 30.0, *appCfg.BusVelocity)
	assert.Equal(t, 5*time.Second, appCfg.RequestTimeout)
}

func TestLoadFromFile_YAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, "config.yml", `
env: test
verbose: true
gtfs-path: https://example.com/gtfs.zip
gtfs-auth-header-key: Authorization
gtfs-auth-header-value: Bearer token123
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	appCfg := cfg.ToAppConfig()
	assert.Equal(t, Test, appCfg.Env)
	assert.True(t, appCfg.Verbose)
	assert.Equal(t, "https://example.com/gtfs.zip", appCfg.GtfsPath)
	assert.Equal(t, "Bearer token123", appCfg.GtfsAuthHeaderValue)

	assert.Equal(t, 4000, appCfg.Port)
	assert.Equal(t, []string{"test"}, appCfg.ApiKeys)
	assert.Equal(t, 100, appCfg.RateLimit)
	assert.Nil(t, appCfg.BusWaitTime, "unset routing values are left to the network document and router defaults")
	assert.Nil(t, appCfg.BusVelocity)
	assert.Equal(t, 10*time.Second, appCfg.RequestTimeout)
}

func TestLoadFromFile_ZeroWaitTimeIsKept(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
network-path: n.json
bus-wait-time: 0
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	appCfg := cfg.ToAppConfig()
	require.NotNil(t, appCfg.BusWaitTime)
	assert.Equal(t, 0.0, *appCfg.BusWaitTime)
	assert.Nil(t, appCfg.BusVelocity)
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{
			name:    "malformed JSON",
			file:    "config.json",
			content: `{"port": 80`,
			errMsg:  "failed to parse JSON config",
		},
		{
			name:    "malformed YAML",
			file:    "config.yaml",
			content: "port: [80\n",
			errMsg:  "failed to parse YAML config",
		},
		{
			name:    "port out of range",
			file:    "config.json",
			content: `{"port": 70000, "network-path": "n.json"}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "unknown environment",
			file:    "config.json",
			content: `{"env": "staging", "network-path": "n.json"}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "no network source",
			file:    "config.json",
			content: `{"port": 4000}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "both network sources",
			file:    "config.json",
			content: `{"network-path": "n.json", "gtfs-path": "g.zip"}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "empty api key",
			file:    "config.json",
			content: `{"network-path": "n.json", "api-keys": ["ok", ""]}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "negative wait time",
			file:    "config.json",
			content: `{"network-path": "n.json", "bus-wait-time": -1}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "zero velocity",
			file:    "config.json",
			content: `{"network-path": "n.json", "bus-velocity": 0}`,
			errMsg:  "invalid configuration",
		},
		{
			name:    "bad timeout",
			file:    "config.json",
			content: `{"network-path": "n.json", "request-timeout": "soon"}`,
			errMsg:  "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, tt.file, tt.content))
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nonexistent.json"))
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "failed to stat config file")
	})
}
