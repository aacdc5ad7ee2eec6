// Package prometheus serves engine metrics in Prometheus text exposition format.
//
// Counters are named tokenauth_*_total; the single histogram is
// tokenauth_validate_latency_seconds. Nothing is registered globally; callers
// mount [Exporter.Handler].
package prometheus
