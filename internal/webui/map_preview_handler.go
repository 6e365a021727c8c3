package webui

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/mapdata"
)

var mapTemplateFuncs = template.FuncMap{
	"points": svgPoints,
}

func svgPoints(points []mapdata.Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%g,%g", p.X, p.Y))
	}
	return strings.Join(parts, " ")
}

// mapPreviewHandler draws the map payload as a plain SVG so render settings can be
// checked without an external renderer.
func (webUI *WebUI) mapPreviewHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	if !webUI.Manager.IsReady() {
		http.Error(w, "network not loaded", http.StatusServiceUnavailable)
		return
	}

	tmpl, err := template.New("map_preview.svg.tmpl").Funcs(mapTemplateFuncs).ParseFS(templateFS, "map_preview.svg.tmpl")
	if err != nil {
		logging.LogError(webUI.Logger, "failed to parse map preview template", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := tmpl.Execute(w, mapdata.Build(webUI.Manager, webUI.RenderSettings)); err != nil {
		logging.LogError(webUI.Logger, "failed to execute map preview template", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
