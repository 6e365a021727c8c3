package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"catalogue.onebusaway.org/internal/appconf"
)

var errNoNetworkSource = errors.New("exactly one of --network or --gtfs is required")

// parseFlags builds the configuration from command-line arguments. It returns the
// config file path separately; when it is set, the other flags are ignored.
func parseFlags(args []string, output io.Writer) (appconf.Config, string, error) {
	var cfg appconf.Config
	var apiKeysFlag, exemptKeysFlag, envFlag, configFile string
	var busWaitTime, busVelocity float64

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&configFile, "config", "", "Path to a JSON or YAML config file; other flags are ignored when set")
	fs.IntVar(&cfg.Port, "port", 4000, "API server port")
	fs.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.StringVar(&exemptKeysFlag, "exempt-api-keys", "", "Comma Separated API Keys that bypass rate limiting")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key")
	fs.StringVar(&cfg.NetworkPath, "network", "", "Path to a JSON or YAML network document")
	fs.StringVar(&cfg.GtfsPath, "gtfs", "", "Path or URL of a static GTFS zip file")
	fs.StringVar(&cfg.GtfsAuthHeaderKey, "gtfs-auth-header-key", "", "Header name sent when downloading the GTFS feed")
	fs.StringVar(&cfg.GtfsAuthHeaderValue, "gtfs-auth-header-value", "", "Header value sent when downloading the GTFS feed")
	fs.Float64Var(&busWaitTime, "bus-wait-time", 6, "Minutes spent waiting at a stop when the network sets none")
	fs.Float64Var(&busVelocity, "bus-velocity", 40, "Bus speed in km/h when the network sets none")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", 10*time.Second, "Maximum handler time per request")
	if err := fs.Parse(args); err != nil {
		return cfg, "", err
	}

	if configFile != "" {
		return cfg, configFile, nil
	}

	// Routing flags only count when given, so the network document can supply
	// whatever the command line leaves out.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus-wait-time":
			cfg.BusWaitTime = &busWaitTime
		case "bus-velocity":
			cfg.BusVelocity = &busVelocity
		}
	})

	cfg.Env = appconf.EnvFlagToEnvironment(envFlag)
	cfg.ApiKeys = ParseAPIKeys(apiKeysFlag)
	cfg.ExemptApiKeys = ParseAPIKeys(exemptKeysFlag)
	if (cfg.NetworkPath == "") == (cfg.GtfsPath == "") {
		return cfg, "", errNoNetworkSource
	}
	return cfg, "", nil
}

func main() {
	cfg, configFile, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if configFile != "" {
		fileCfg, err := appconf.LoadFromFile(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = fileCfg.ToAppConfig()
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		os.Exit(1)
	}

	srv, api := CreateServer(coreApp, cfg)
	if err := Run(srv, coreApp, api); err != nil {
		coreApp.Logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
