package models

type GitProperties struct {
	GitBranch                string `json:"git.branch"`
	GitBuildHost             string `json:"git.build.host"`
	GitBuildTime             string `json:"git.build.time"`
	GitBuildUserEmail        string `json:"git.build.user.email"`
	GitBuildUserName         string `json:"git.build.user.name"`
	GitBuildVersion          string `json:"git.build.version"`
	GitCommitId              string `json:"git.commit.id"`
	GitCommitIdAbbrev        string `json:"git.commit.id.abbrev"`
	GitCommitIdDescribe      string `json:"git.commit.id.describe"`
	GitCommitIdDescribeShort string `json:"git.commit.id.describe-short"`
	GitCommitMessageFull     string `json:"git.commit.message.full"`
	GitCommitMessageShort    string `json:"git.commit.message.short"`
	GitCommitTime            string `json:"git.commit.time"`
	GitCommitUserEmail       string `json:"git.commit.user.email"`
	GitCommitUserName        string `json:"git.commit.user.name"`
	GitDirty                 string `json:"git.dirty"`
	GitRemoteOriginUrl       string `json:"git.remote.origin.url"`
}

// RoutingConfig echoes the routing settings the itinerary graph was built with.
type RoutingConfig struct {
	BusWaitTime float64 `json:"busWaitTime"`
	BusVelocity float64 `json:"busVelocity"`
}

// NetworkSummary describes the loaded network.
type NetworkSummary struct {
	StopCount     int    `json:"stopCount"`
	BusCount      int    `json:"busCount"`
	GraphVertices int    `json:"graphVertexCount"`
	GraphEdges    int    `json:"graphEdgeCount"`
	LoadedAt      int64  `json:"loadedAt"`
	NetworkSource string `json:"networkSource"`
}

type ConfigModel struct {
	GitProperties GitProperties  `json:"gitProperties"`
	Id            string         `json:"id"`
	Name          string         `json:"name"`
	Routing       RoutingConfig  `json:"routing"`
	Network       NetworkSummary `json:"network"`
}
