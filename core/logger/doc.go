// Package logger builds the zap logger shared by the CLI, the provider and the
// HTTP features.
//
// Level "debug" selects zap's development config, any other level the
// production config. Format chooses json or console encoding.
//
// HTTP handlers log through WithRayID so every line of a request carries the
// ray_id assigned by the rayid middleware:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Refresh failed", zap.Error(err))
package logger
