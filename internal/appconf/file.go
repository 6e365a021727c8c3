package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration. JSON and YAML files share the same keys.
type FileConfig struct {
	Port                int      `json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Env                 string   `json:"env" yaml:"env" validate:"omitempty,oneof=development test production"`
	ApiKeys             []string `json:"api-keys" yaml:"api-keys" validate:"dive,required"`
	Verbose             bool     `json:"verbose" yaml:"verbose"`
	RateLimit           int      `json:"rate-limit" yaml:"rate-limit" validate:"gte=0"`
	ExemptApiKeys       []string `json:"exempt-api-keys" yaml:"exempt-api-keys" validate:"dive,required"`
	NetworkPath         string   `json:"network-path" yaml:"network-path" validate:"required_without=GtfsPath,excluded_with=GtfsPath"`
	GtfsPath            string   `json:"gtfs-path" yaml:"gtfs-path"`
	GtfsAuthHeaderKey   string   `json:"gtfs-auth-header-key" yaml:"gtfs-auth-header-key"`
	GtfsAuthHeaderValue string   `json:"gtfs-auth-header-value" yaml:"gtfs-auth-header-value" validate:"required_with=GtfsAuthHeaderKey"`
	BusWaitTime         *float64 `json:"bus-wait-time" yaml:"bus-wait-time" validate:"omitempty,gte=0"`
	BusVelocity         *float64 `json:"bus-velocity" yaml:"bus-velocity" validate:"omitempty,gt=0"`
	RequestTimeout      string   `json:"request-timeout" yaml:"request-timeout"`
}

// LoadFromFile reads, parses and validates a JSON or YAML config file. The format is
// chosen by extension; anything that is not .yaml or .yml is parsed as JSON.
func LoadFromFile(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks field constraints and the request timeout format.
func (cfg *FileConfig) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.RequestTimeout != "" {
		if _, err := time.ParseDuration(cfg.RequestTimeout); err != nil {
			return fmt.Errorf("request-timeout: %w", err)
		}
	}
	return nil
}

// ToAppConfig converts the file config into a Config, applying the defaults the
// command-line flags would supply for missing values. Routing values stay nil when
// the file omits them; an explicit 0 is kept.
func (cfg *FileConfig) ToAppConfig() Config {
	appCfg := Config{
		Port:                cfg.Port,
		Env:                 EnvFlagToEnvironment(cfg.Env),
		ApiKeys:             cfg.ApiKeys,
		Verbose:             cfg.Verbose,
		RateLimit:           cfg.RateLimit,
		ExemptApiKeys:       cfg.ExemptApiKeys,
		NetworkPath:         cfg.NetworkPath,
		GtfsPath:            cfg.GtfsPath,
		GtfsAuthHeaderKey:   cfg.GtfsAuthHeaderKey,
		GtfsAuthHeaderValue: cfg.GtfsAuthHeaderValue,
		BusWaitTime:         cfg.BusWaitTime,
		BusVelocity:         cfg.BusVelocity,
	}

	if appCfg.Port == 0 {
		appCfg.Port = 4000
	}
	if len(appCfg.ApiKeys) == 0 {
		appCfg.ApiKeys = []string{"test"}
	}
	if appCfg.RateLimit == 0 {
		appCfg.RateLimit = 100
	}
	if cfg.RequestTimeout != "" {
		// Validate already rejected unparsable values.
		appCfg.RequestTimeout, _ = time.ParseDuration(cfg.RequestTimeout)
	}
	if appCfg.RequestTimeout == 0 {
		appCfg.RequestTimeout = 10 * time.Second
	}

	return appCfg
}
