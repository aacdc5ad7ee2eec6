package tokenauth

import "time"

// minRecommendedKeyBytes is the HMAC-SHA-256 block-size floor below which the
// report flags the signing key.
const minRecommendedKeyBytes = 32

type SecurityReport struct {
	SigningAlgorithm     string
	SigningKeyBytes      int
	TokenTTL             time.Duration
	IssuerEnforced       bool
	AudienceEnforced     bool
	FixedSubject         bool
	Argon2               PasswordConfigReport
	LoginThrottleActive  bool
	IPThrottleActive     bool
	MaxLoginAttempts     int
	LoginCooldown        time.Duration
	AuditEnabled         bool
	ValidateLatencyTimed bool
	Warnings             []string
}

type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport summarizes the effective security posture of the engine.
// Warnings lists settings that are valid but weaker than recommended.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	throttle := e.rateLimiter != nil
	r := SecurityReport{
		SigningAlgorithm: "HS256",
		SigningKeyBytes:  len(e.config.JWT.SigningKey),
		TokenTTL:         e.jwtManager.TTL(),
		IssuerEnforced:   e.config.JWT.Issuer != "",
		AudienceEnforced: e.config.JWT.Audience != "",
		FixedSubject:     e.config.JWT.Subject != "",
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		LoginThrottleActive:  throttle,
		IPThrottleActive:     throttle && e.config.Security.EnableIPThrottle,
		MaxLoginAttempts:     e.config.Security.MaxLoginAttempts,
		LoginCooldown:        e.config.Security.LoginCooldown,
		AuditEnabled:         e.audit != nil,
		ValidateLatencyTimed: e.metrics.LatencyEnabled(),
	}

	if r.SigningKeyBytes < minRecommendedKeyBytes {
		r.Warnings = append(r.Warnings, "signing key is shorter than 32 bytes")
	}
	if !r.IssuerEnforced || !r.AudienceEnforced {
		r.Warnings = append(r.Warnings, "issuer or audience is empty; tokens are not bound to this deployment")
	}
	if r.FixedSubject {
		r.Warnings = append(r.Warnings, "fixed subject configured; sub does not identify the caller")
	}
	if !throttle {
		r.Warnings = append(r.Warnings, "login throttling inactive")
	}
	if e.config.Password.Memory < 19*1024 {
		r.Warnings = append(r.Warnings, "argon2id memory below 19 MiB")
	}
	return r
}
