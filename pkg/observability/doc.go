// Package observability provides structured logging and Prometheus metrics
// for the Castboard API.
//
// # Logging
//
// Logger wraps log/slog with a JSON handler and field-chaining helpers:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("actor_id", id).Info("actor created")
//
// # Metrics
//
// Metrics registers HTTP request counters/histograms and database pool gauges
// on a Prometheus registry. httputil's metrics middleware feeds the HTTP
// metrics; the /metrics endpoint exposes the registry.
package observability
