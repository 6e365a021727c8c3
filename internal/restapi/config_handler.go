package restapi

import (
	"net/http"

	"catalogue.onebusaway.org/internal/buildinfo"
	"catalogue.onebusaway.org/internal/models"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	shortHash := "unknown"
	if len(buildinfo.CommitHash) >= 7 {
		shortHash = buildinfo.CommitHash[:7]
	}

	gitProps := models.GitProperties{
		GitBranch:                buildinfo.Branch,
		GitBuildTime:             buildinfo.BuildTime,
		GitBuildVersion:          buildinfo.Version,
		GitCommitId:              buildinfo.CommitHash,
		GitCommitTime:            buildinfo.CommitTime,
		GitDirty:                 buildinfo.Dirty,
		GitCommitIdAbbrev:        shortHash,
		GitBuildHost:             buildinfo.Host,
		GitBuildUserEmail:        buildinfo.UserEmail,
		GitBuildUserName:         buildinfo.UserName,
		GitCommitUserEmail:       buildinfo.UserEmail,
		GitCommitUserName:        buildinfo.UserName,
		GitRemoteOriginUrl:       buildinfo.RemoteURL,
		GitCommitMessageShort:    buildinfo.CommitMessage,
		GitCommitMessageFull:     buildinfo.CommitMessage,
		GitCommitIdDescribe:      buildinfo.Version,
		GitCommitIdDescribeShort: buildinfo.Version,
	}

	settings := api.Manager.Settings()
	graph := api.Manager.Graph()

	source := api.Config.NetworkPath
	if source == "" {
		source = api.Config.GtfsPath
	}

	configEntry := models.ConfigModel{
		GitProperties: gitProps,
		Id:            "transit-catalogue",
		Name:          "OneBusAway Transit Catalogue",
		Routing: models.RoutingConfig{
			BusWaitTime: settings.BusWaitTime,
			BusVelocity: settings.BusVelocity,
		},
		Network: models.NetworkSummary{
			StopCount:     len(api.Manager.GetStops()),
			BusCount:      len(api.Manager.GetBuses()),
			GraphVertices: graph.VertexCount(),
			GraphEdges:    graph.EdgeCount(),
			LoadedAt:      api.Manager.LoadedAt().UnixMilli(),
			NetworkSource: source,
		},
	}

	response := models.NewEntryResponse(
		configEntry,
		models.NewEmptyReferences(),
		api.Clock,
	)

	api.sendResponse(w, r, response)
}
