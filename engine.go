package tokenauth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/internal/rate"
	"github.com/MrEthical07/tokenauth/jwt"
	"github.com/MrEthical07/tokenauth/password"
	"github.com/rs/zerolog"
)

// Engine is immutable after Build and safe for concurrent use.
type Engine struct {
	config       Config
	verifier     *credential.Verifier
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
	logger       zerolog.Logger
	clock        func() time.Time
}

// Close flushes pending audit events. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports events discarded because the audit buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenTTL is the validity window of tokens returned by Login and Issue.
func (e *Engine) TokenTTL() time.Duration {
	return e.jwtManager.TTL()
}

// LoginCooldown is the window after which a throttled identifier may retry.
func (e *Engine) LoginCooldown() time.Duration {
	return e.config.Security.LoginCooldown
}

// PasswordHasher exposes the configured Argon2id hasher for seeding stores.
func (e *Engine) PasswordHasher() *password.Argon2 {
	return e.passwordHash
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies identifier and secret and returns a signed token.
//
// Errors: ErrInvalidInput, ErrInvalidCredentials, ErrLoginRateLimited, and
// ErrIdentityStoreUnavailable. No partial token is ever returned.
func (e *Engine) Login(ctx context.Context, identifier, secret string) (string, error) {
	if e == nil || e.verifier == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	if identifier == "" || secret == "" {
		e.metricInc(MetricLoginInvalidInput)
		e.emitAudit(ctx, auditEventLoginFailure, false, ErrInvalidInput, auditFields{identifier: identifier})
		return "", ErrInvalidInput
	}

	if err := e.checkLoginThrottle(ctx, identifier); err != nil {
		return "", err
	}

	id, err := e.verifier.Verify(ctx, identifier, secret)
	if err != nil {
		return "", e.loginFailed(ctx, identifier, err)
	}
	e.resetLoginThrottle(ctx, identifier)

	claims := e.jwtManager.Claims(principalOf(id), e.now())
	token, err := e.jwtManager.Sign(claims)
	if err != nil {
		e.logger.Error().Err(err).Str("identifier", identifier).Msg("token signing failed")
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventLoginSuccess, true, nil, auditFields{
		identifier: identifier,
		subject:    claims.Subject(),
		tokenID:    claims.TokenID(),
	})
	return token, nil
}

// Authenticate runs the credential check alone, without throttling or issuance.
func (e *Engine) Authenticate(ctx context.Context, identifier, secret string) (Identity, error) {
	if e == nil || e.verifier == nil {
		return Identity{}, ErrEngineNotReady
	}
	return e.verifier.Verify(ctx, identifier, secret)
}

// Issue signs a token for an identity that was verified elsewhere.
func (e *Engine) Issue(ctx context.Context, id Identity) (string, error) {
	if e == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	if id.Identifier == "" {
		return "", ErrInvalidInput
	}

	claims := e.jwtManager.Claims(principalOf(id), e.now())
	token, err := e.jwtManager.Sign(claims)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, nil, auditFields{
		identifier: id.Identifier,
		subject:    claims.Subject(),
		tokenID:    claims.TokenID(),
	})
	return token, nil
}

// Validate verifies token text and returns its claims. Rejections are
// *jwt.VerificationError values; use jwt.KindOf or errors.Is with the jwt
// sentinels to classify them.
func (e *Engine) Validate(ctx context.Context, token string) (*ClaimSet, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	claims, err := e.jwtManager.VerifyAt(token, e.now())
	if err != nil {
		kind, _ := jwt.KindOf(err)
		e.metricInc(validateMetric(kind))
		e.emitAudit(ctx, auditEventTokenRejected, false, err, auditFields{
			metadata: map[string]string{"kind": kind.String()},
		})
		return nil, err
	}

	e.metricInc(MetricValidateSuccess)
	return claims, nil
}

func validateMetric(kind jwt.Kind) MetricID {
	switch kind {
	case jwt.KindBadSignature:
		return MetricValidateBadSignature
	case jwt.KindExpired:
		return MetricValidateExpired
	case jwt.KindWrongAudience:
		return MetricValidateWrongAudience
	default:
		return MetricValidateMalformed
	}
}

func (e *Engine) checkLoginThrottle(ctx context.Context, identifier string) error {
	if e.rateLimiter == nil {
		return nil
	}
	err := e.rateLimiter.Check(ctx, identifier, clientIPFromContext(ctx))
	if err == nil {
		return nil
	}
	reason := "limit_exceeded"
	if !errors.Is(err, rate.ErrRateLimited) {
		// An unreachable limiter rejects the login.
		reason = "backend_unavailable"
		e.metricInc(MetricRateLimitBackendError)
		e.logger.Error().Err(err).Msg("login throttle check failed")
	}
	e.metricInc(MetricLoginRateLimited)
	e.emitAudit(ctx, auditEventLoginRateLimited, false, ErrLoginRateLimited, auditFields{
		identifier: identifier,
		metadata:   map[string]string{"throttle": reason},
	})
	return ErrLoginRateLimited
}

func (e *Engine) loginFailed(ctx context.Context, identifier string, err error) error {
	if !errors.Is(err, ErrInvalidCredentials) {
		e.metricInc(MetricIdentityStoreError)
		e.logger.Error().Err(err).Str("identifier", identifier).Msg("credential verification failed")
		e.emitAudit(ctx, auditEventLoginFailure, false, err, auditFields{identifier: identifier})
		return err
	}

	if e.rateLimiter != nil {
		if rerr := e.rateLimiter.RecordFailure(ctx, identifier, clientIPFromContext(ctx)); rerr != nil && !errors.Is(rerr, rate.ErrRateLimited) {
			e.metricInc(MetricRateLimitBackendError)
			e.logger.Warn().Err(rerr).Msg("recording failed login")
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, ErrInvalidCredentials, auditFields{identifier: identifier})
	return ErrInvalidCredentials
}

func (e *Engine) resetLoginThrottle(ctx context.Context, identifier string) {
	if e.rateLimiter == nil {
		return
	}
	if err := e.rateLimiter.Reset(ctx, identifier); err != nil {
		e.metricInc(MetricRateLimitBackendError)
		e.logger.Warn().Err(err).Msg("resetting login throttle")
	}
}
