package webui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/davecgh/go-spew/spew"

	"catalogue.onebusaway.org/internal/appconf"
	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/router"
)

//go:embed debug_index.html map_preview.svg.tmpl
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

type busInfoDump struct {
	Name string
	Info catalogue.BusInfo
}

type graphDump struct {
	Vertices int
	Edges    int
	Detail   []string
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "debug_index.html")
	if err != nil {
		logging.LogError(webUI.Logger, "failed to parse debug template", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	err = tmpl.Execute(w, debugData{Title: title, Pre: content})
	if err != nil {
		logging.LogError(webUI.Logger, "failed to execute debug template", err,
			slog.String("title", title))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	if !webUI.Manager.IsReady() {
		http.Error(w, "network not loaded", http.StatusServiceUnavailable)
		return
	}

	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "stops":
		data = webUI.Manager.GetStops()
		title = "Catalogue - Stops"
	case "buses":
		data = webUI.Manager.GetBuses()
		title = "Catalogue - Buses"
	case "bus_info":
		data = webUI.busInfo()
		title = "Catalogue - Bus Statistics"
	case "graph":
		data = webUI.graphDump()
		title = "Router - Itinerary Graph"
	case "routing":
		data = webUI.Manager.Settings()
		title = "Router - Settings"
	case "render":
		data = webUI.RenderSettings
		title = "Map - Render Settings"
	default:
		data = map[string]string{
			"error": "Please use one of the following: stops, buses, bus_info, graph, routing, render.",
		}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, title, data)
}

func (webUI *WebUI) busInfo() []busInfoDump {
	buses := webUI.Manager.GetBuses()
	result := make([]busInfoDump, 0, len(buses))
	for _, bus := range buses {
		info, _ := webUI.Manager.GetBusInfo(bus.Name)
		result = append(result, busInfoDump{Name: bus.Name, Info: info})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (webUI *WebUI) graphDump() graphDump {
	graph := webUI.Manager.Graph()
	dump := graphDump{
		Vertices: graph.VertexCount(),
		Edges:    graph.EdgeCount(),
		Detail:   make([]string, 0, graph.EdgeCount()),
	}
	for _, edge := range graph.Edges() {
		dump.Detail = append(dump.Detail, webUI.describeEdge(edge))
	}
	return dump
}

func (webUI *WebUI) describeEdge(edge router.Edge) string {
	from := webUI.Manager.Stop(edge.From.Stop).Name
	to := webUI.Manager.Stop(edge.To.Stop).Name
	return fmt.Sprintf("%s/%s -> %s/%s %s %q span=%d weight=%.2f",
		from, edge.From.Kind, to, edge.To.Kind, edge.Kind, edge.Label, edge.Span, edge.Weight)
}
