package app

import (
	"log/slog"

	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/clock"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/metrics"
	"catalogue.onebusaway.org/internal/transit"
)

// Application holds the dependencies shared by HTTP handlers, helpers and middleware.
type Application struct {
	Config         appconf.Config
	Logger         *slog.Logger
	Manager        *transit.Manager
	RenderSettings mapdata.RenderSettings
	Clock          clock.Clock
	Metrics        *metrics.Metrics
}
