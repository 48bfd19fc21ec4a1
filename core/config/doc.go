// Package config loads datasync settings from the environment.
//
// A .env file in the given directory is applied first, then Viper resolves
// every key from environment variables, falling back to the default struct
// tags of each section.
//
// # Configuration Structure
//
//   - Provider: origin, endpoint, interval, source, model and key field
//   - Server: HTTP port, API key, route prefix and metrics path
//   - Database: connection details for the database source
//   - Storage: MinIO credentials and bucket for the storage source
//   - Log: logging level and format
//
// Nested keys map to upper-case variables joined by underscores, so
// provider.interval_ms is read from PROVIDER_INTERVAL_MS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Provider.Origin)
package config
