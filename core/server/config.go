package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// MetricsPath is where Prometheus metrics are served. Empty disables them.
	MetricsPath string `mapstructure:"metrics_path" default:"/metrics"`
	// Prefix is the route group the collection is mounted under.
	Prefix string `mapstructure:"prefix" default:"/api"`
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// MetricsEnabled reports whether the metrics endpoint should be mounted.
func (c Config) MetricsEnabled() bool {
	return c.MetricsPath != ""
}

// RoutePrefix returns Prefix with a leading slash and no trailing slash. The
// root prefix becomes "".
func (c Config) RoutePrefix() string {
	p := strings.TrimRight(c.Prefix, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
