package internaldefs

import (
	"github.com/MrEthical07/tokenauth"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   tokenauth.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   tokenauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is exported alongside the engine counters.
const (
	AuditDroppedName = "tokenauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: tokenauth.MetricLoginSuccess, Name: "tokenauth_login_success_total", Help: "Successful logins."},
	{ID: tokenauth.MetricLoginFailure, Name: "tokenauth_login_failure_total", Help: "Logins rejected for invalid credentials."},
	{ID: tokenauth.MetricLoginInvalidInput, Name: "tokenauth_login_invalid_input_total", Help: "Logins missing an identifier or secret."},
	{ID: tokenauth.MetricLoginRateLimited, Name: "tokenauth_login_rate_limited_total", Help: "Logins rejected by throttling."},
	{ID: tokenauth.MetricIdentityStoreError, Name: "tokenauth_identity_store_error_total", Help: "Identity store lookups that failed."},
	{ID: tokenauth.MetricRateLimitBackendError, Name: "tokenauth_rate_limit_backend_error_total", Help: "Throttle backend errors."},
	{ID: tokenauth.MetricTokenIssued, Name: "tokenauth_token_issued_total", Help: "Signed tokens issued."},
	{ID: tokenauth.MetricValidateSuccess, Name: "tokenauth_validate_success_total", Help: "Tokens accepted."},
	{ID: tokenauth.MetricValidateMalformed, Name: "tokenauth_validate_malformed_total", Help: "Tokens rejected as malformed."},
	{ID: tokenauth.MetricValidateBadSignature, Name: "tokenauth_validate_bad_signature_total", Help: "Tokens rejected for a bad signature."},
	{ID: tokenauth.MetricValidateExpired, Name: "tokenauth_validate_expired_total", Help: "Tokens rejected as expired."},
	{ID: tokenauth.MetricValidateWrongAudience, Name: "tokenauth_validate_wrong_audience_total", Help: "Tokens rejected for issuer or audience mismatch."},
}

var HistogramDefs = []HistogramDef{
	{ID: tokenauth.MetricValidateLatency, Name: "tokenauth_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the engine's latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
