// Package observability provides OpenTelemetry tracing and metrics for
// pipeline execution.
//
// InitTracer and InitMeter wire the OTLP HTTP exporters and install global
// providers. Pipelines record per-node spans and operation metrics through
// the helpers in this package.
package observability
