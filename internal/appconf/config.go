package appconf

import "time"

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment converts a command-line or config file value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "development":
		return Development
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

// Config holds all application configuration.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	Verbose   bool
	RateLimit int // Requests per second per API key for rate limiting
	// ExemptApiKeys are valid keys that bypass rate limiting.
	ExemptApiKeys []string

	// NetworkPath is a JSON or YAML network document. GtfsPath is a static GTFS zip
	// path or URL. Exactly one of them is set.
	NetworkPath         string
	GtfsPath            string
	GtfsAuthHeaderKey   string
	GtfsAuthHeaderValue string

	// BusWaitTime (minutes) and BusVelocity (km/h) fill in whatever the network
	// document's routing_settings leave out. Nil means not configured.
	BusWaitTime *float64
	BusVelocity *float64

	RequestTimeout time.Duration
}
