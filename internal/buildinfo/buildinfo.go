// Package buildinfo holds version control metadata injected at link time, e.g.
//
//	go build -ldflags "-X catalogue.onebusaway.org/internal/buildinfo.CommitHash=$(git rev-parse HEAD)"
package buildinfo

var (
	Branch        = "unknown"
	BuildTime     = "unknown"
	CommitHash    = "unknown"
	CommitMessage = ""
	CommitTime    = "unknown"
	Dirty         = "unknown"
	Host          = "unknown"
	RemoteURL     = ""
	UserEmail     = ""
	UserName      = ""
	Version       = "dev"
)
