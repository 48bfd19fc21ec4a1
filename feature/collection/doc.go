// Package collection mirrors a provider's collection over HTTP.
//
// Routes, relative to the router the feature is loaded on:
//
//	GET  /collection          objects in collection order with their count
//	GET  /collection/keys     keys in collection order
//	GET  /collection/status   outcome of the last pass
//	GET  /collection/:key     a single object, 404 when absent
//	POST /collection/refresh  run a pass now
//
// Concurrent refresh requests share one pass through singleflight. A failed
// refresh answers 502 when the source reported an error and 500 otherwise.
package collection
