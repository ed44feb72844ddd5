// Package observability provides structured logging, Prometheus
// metrics and health probes.
package observability
