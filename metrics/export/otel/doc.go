// Package otel exposes engine metrics as OpenTelemetry asynchronous instruments.
//
// [New] registers an Int64ObservableCounter per engine counter and an
// Int64ObservableGauge per latency bucket. One callback reads the engine
// snapshot on each collection cycle. Callers own the MeterProvider.
package otel
