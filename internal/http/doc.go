// Package http serves the tree counter and policy sweeps over HTTP.
//
// Routes:
//
//	GET  /health          liveness and telemetry health
//	GET  /metrics         Prometheus exposition
//	GET  /api/v1/policies canonical policy names
//	POST /api/v1/run      one run, {"policy","branching","budget","node_limit"}
//	POST /api/v1/sweep    a sweep report, {"policies","branching","from","to"}
//
// API routes are rate limited per client address. Every run is bounded by
// the configured node limit and request timeout.
package http
