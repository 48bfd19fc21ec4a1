package provider

import "time"

// Config holds configuration for a provider built from the command line.
type Config struct {
	// Name labels the provider in logs and metrics.
	Name string `mapstructure:"name" default:"default"`
	// Origin is prepended to every endpoint.
	Origin string `mapstructure:"origin" default:""`
	// Endpoint is the path fetched on every pass.
	Endpoint string `mapstructure:"endpoint" default:"/"`
	// IntervalMs is the period of repeating passes; zero fetches once.
	IntervalMs int `mapstructure:"interval_ms" default:"0"`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Source selects the fetcher: http, storage or database.
	Source string `mapstructure:"source" default:"http"`
	// Model is the class (alias or identity) objects are cast into. Empty keeps
	// plain decoded values.
	Model string `mapstructure:"model" default:""`
	// SchemaFile is the YAML schema document registering Model.
	SchemaFile string `mapstructure:"schema_file" default:""`
	// KeyField names the field objects are keyed by.
	KeyField string `mapstructure:"key_field" default:"key"`
}

const (
	SourceHTTP     = "http"
	SourceStorage  = "storage"
	SourceDatabase = "database"
)

// IsValidSource checks if the configured source is supported.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceHTTP, SourceStorage, SourceDatabase:
		return true
	default:
		return false
	}
}

// Interval returns IntervalMs as a duration.
func (c Config) Interval() time.Duration {
	if c.IntervalMs <= 0 {
		return 0
	}
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Timeout returns TimeoutSeconds as a duration, defaulting to 30 seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
