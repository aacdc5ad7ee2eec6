package tokenauth

import (
	"context"
	"testing"
	"time"
)

// Validate cost with the metrics layer at each setting.
func BenchmarkValidateMetricsModes(b *testing.B) {
	modes := []struct {
		name string
		cfg  MetricsConfig
	}{
		{"off", MetricsConfig{}},
		{"counters", MetricsConfig{Enabled: true}},
		{"counters+latency", MetricsConfig{Enabled: true, EnableLatencyHistograms: true}},
	}

	for _, mode := range modes {
		b.Run(mode.name, func(b *testing.B) {
			engine := newBenchmarkEngine(b, func(cfg *Config) { cfg.Metrics = mode.cfg })
			token, err := engine.Login(context.Background(), "foo@gmail.com", "password")
			if err != nil {
				b.Fatalf("login failed: %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if _, err := engine.Validate(context.Background(), token); err != nil {
						b.Fatalf("validate failed: %v", err)
					}
				}
			})
		})
	}
}

// Mixed accept/reject traffic spreads increments across every validate counter.
func BenchmarkValidateMixedOutcomesParallel(b *testing.B) {
	engine := newBenchmarkEngine(b)
	good, err := engine.Login(context.Background(), "foo@gmail.com", "password")
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	other := newBenchmarkEngine(b, func(cfg *Config) { cfg.JWT.Audience = "someone-else" })
	foreign, err := other.Login(context.Background(), "foo@gmail.com", "password")
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	tampered := []byte(good)
	tampered[len(tampered)-2] ^= 0x01

	tokens := [...]string{good, string(tampered), "not-a-token", foreign}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			_, _ = engine.Validate(context.Background(), tokens[idx])
			idx++
			if idx == len(tokens) {
				idx = 0
			}
		}
	})
	b.StopTimer()

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricValidateSuccess] == 0 || snap.Counters[MetricValidateMalformed] == 0 {
		b.Fatalf("expected success and malformed counters to move, got %v", snap.Counters)
	}
}

func BenchmarkMetricsObserveValidateLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	latencies := [...]time.Duration{40 * time.Microsecond, 900 * time.Microsecond, 3 * time.Millisecond}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Observe(MetricValidateLatency, latencies[idx])
			idx++
			if idx == len(latencies) {
				idx = 0
			}
		}
	})
}
