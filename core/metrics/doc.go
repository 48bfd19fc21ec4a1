// Package metrics exports provider activity as Prometheus metrics.
//
// A Metrics value owns its own registry, wrapped with a constant "service"
// label, which carries the Go runtime and process collectors plus the
// datasync collectors:
//
//   - datasync_provider_passes_total{provider,result}: finished passes, where
//     result is "changed", "unchanged" or "error";
//   - datasync_provider_events_total{provider,type}: emitted provider events;
//   - datasync_provider_objects{provider}: objects currently stored;
//   - datasync_provider_last_success_timestamp_seconds{provider}.
//
// Providers are attached with Observe, which subscribes to their event bus.
//
// # Usage
//
//	m := metrics.New("datasync")
//	stop := m.Observe("users", p)
//	defer stop()
//	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
package metrics
