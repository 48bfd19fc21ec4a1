// Package server holds the HTTP server configuration used by the serve command.
//
// # Configuration
//
// The Config struct defines the listen port, the optional API key, the route
// prefix the collection is mounted under and the metrics path.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/serve.go when the
// fiber application is built.
package server
