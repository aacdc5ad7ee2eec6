package tokenauth

import (
	"strings"
	"testing"
)

func TestSecurityReportReflectsConfig(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithIdentityStore(newMemoryStore(t)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	r := engine.SecurityReport()
	if r.SigningAlgorithm != "HS256" || r.SigningKeyBytes != len(testSigningKey) {
		t.Fatalf("unexpected signing summary: %+v", r)
	}
	if !r.IssuerEnforced || !r.AudienceEnforced || r.FixedSubject {
		t.Fatalf("unexpected claim binding: %+v", r)
	}
	if !r.LoginThrottleActive || r.MaxLoginAttempts != 3 {
		t.Fatalf("expected active throttle with 3 attempts: %+v", r)
	}
	if r.TokenTTL != DefaultConfig().JWT.TTL {
		t.Fatalf("expected default ttl, got %v", r.TokenTTL)
	}
	// testConfig lowers argon2 memory for speed.
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "argon2id memory") {
		t.Fatalf("expected only the argon2 memory warning, got %v", r.Warnings)
	}
}

func TestSecurityReportWarnsWithoutThrottleOrAudience(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Audience = ""
	cfg.JWT.SigningKey = []byte("short")
	engine, err := New().WithConfig(cfg).WithIdentityStore(newMemoryStore(t)).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	warnings := strings.Join(engine.SecurityReport().Warnings, "\n")
	for _, want := range []string{"shorter than 32 bytes", "issuer or audience", "throttling inactive"} {
		if !strings.Contains(warnings, want) {
			t.Fatalf("expected warning %q, got:\n%s", want, warnings)
		}
	}
}

func TestSecurityReportNilEngine(t *testing.T) {
	var e *Engine
	if r := e.SecurityReport(); r.SigningAlgorithm != "" || len(r.Warnings) != 0 {
		t.Fatalf("expected zero report, got %+v", r)
	}
}
