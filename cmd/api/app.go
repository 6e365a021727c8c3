package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catalogue.onebusaway.org/internal/app"
	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/clock"
	"catalogue.onebusaway.org/internal/ingest"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/metrics"
	"catalogue.onebusaway.org/internal/restapi"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/transit"
	"catalogue.onebusaway.org/internal/webui"
)

const networkAgeInterval = 30 * time.Second

// ParseAPIKeys splits a comma separated flag value and trims each key.
func ParseAPIKeys(apiKeysFlag string) []string {
	if apiKeysFlag == "" {
		return []string{}
	}
	keys := strings.Split(apiKeysFlag, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

func newLogger(cfg appconf.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if cfg.Env == appconf.Production {
		return logging.NewStructuredLogger(os.Stdout, level)
	}
	return logging.NewTextLogger(os.Stdout, level)
}

// routingFallback applies the configured routing values over the router defaults.
// Only values that were set override, so an explicit 0 wait time is honoured.
func routingFallback(cfg appconf.Config) router.Settings {
	settings := router.DefaultSettings()
	if cfg.BusWaitTime != nil {
		settings.BusWaitTime = *cfg.BusWaitTime
	}
	if cfg.BusVelocity != nil {
		settings.BusVelocity = *cfg.BusVelocity
	}
	return settings
}

// loadDocument reads the network from a document file or a static GTFS feed.
func loadDocument(ctx context.Context, cfg appconf.Config) (*ingest.Document, error) {
	switch {
	case cfg.NetworkPath != "":
		return ingest.LoadFile(cfg.NetworkPath)
	case cfg.GtfsPath != "":
		return ingest.LoadGTFS(ctx, ingest.GTFSSource{
			Location:        cfg.GtfsPath,
			AuthHeaderKey:   cfg.GtfsAuthHeaderKey,
			AuthHeaderValue: cfg.GtfsAuthHeaderValue,
		})
	default:
		return nil, errors.New("no network source configured: set a network path or a GTFS path")
	}
}

// BuildApplication loads the network, builds the itinerary graph and wires the
// dependencies shared by every handler.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		// Remote feeds get a generous multiple of the request budget.
		ctx, cancel = context.WithTimeout(ctx, 30*cfg.RequestTimeout)
		defer cancel()
	}

	doc, err := loadDocument(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	store := catalogue.NewStore()
	if err := doc.Populate(store); err != nil {
		return nil, fmt.Errorf("failed to populate network: %w", err)
	}

	manager, err := transit.InitManager(store, doc.Routing(routingFallback(cfg)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transit manager: %w", err)
	}

	renderSettings := doc.Render(mapdata.DefaultRenderSettings())
	if err := renderSettings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render settings: %w", err)
	}

	appMetrics := metrics.NewWithLogger(logger)
	graph := manager.Graph()
	appMetrics.RecordNetwork(store.StopCount(), store.BusCount(), graph.VertexCount(), graph.EdgeCount())
	appMetrics.StartNetworkAgeCollector(func() time.Duration {
		return time.Since(manager.LoadedAt())
	}, networkAgeInterval)

	return &app.Application{
		Config:         cfg,
		Logger:         logger,
		Manager:        manager,
		RenderSettings: renderSettings,
		Clock:          clock.RealClock{},
		Metrics:        appMetrics,
	}, nil
}

// CreateServer registers the API and debug routes and returns a configured server.
// Callers must call api.Shutdown when done.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	webUI := &webui.WebUI{Application: coreApp}

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webUI.SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv, api
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run(srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := coreApp.Logger

	serverErrors := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "server_starting",
			slog.String("addr", srv.Addr),
			slog.String("env", coreApp.Config.Env.String()))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logging.LogOperation(logger, "server_shutting_down", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		api.Shutdown()
		if coreApp.Metrics != nil {
			coreApp.Metrics.Shutdown()
		}
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logging.LogOperation(logger, "server_stopped")
		return nil
	}
}
