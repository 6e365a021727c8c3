// Package webui serves the developer-facing debug pages of the catalogue.
package webui

import (
	"net/http"

	"catalogue.onebusaway.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
	mux.HandleFunc("GET /debug/map.svg", webUI.mapPreviewHandler)
}
