package tokenauth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/tokenauth/jwt"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginRateLimited = "login_rate_limited"
	auditEventTokenIssued      = "token_issued"
	auditEventTokenRejected    = "token_rejected"
)

// AuditErrorCode is the stable, non-sensitive error label written to AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrMalformed          AuditErrorCode = "malformed"
	auditErrBadSignature       AuditErrorCode = "bad_signature"
	auditErrExpired            AuditErrorCode = "expired"
	auditErrWrongAudience      AuditErrorCode = "wrong_audience"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

type auditFields struct {
	identifier string
	subject    string
	tokenID    string
	metadata   map[string]string
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, err error, f auditFields) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:  e.now().UTC(),
		EventType:  eventType,
		Identifier: f.identifier,
		Subject:    f.subject,
		TokenID:    f.tokenID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   f.metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	if kind, ok := jwt.KindOf(err); ok {
		switch kind {
		case jwt.KindMalformed:
			return auditErrMalformed
		case jwt.KindBadSignature:
			return auditErrBadSignature
		case jwt.KindExpired:
			return auditErrExpired
		case jwt.KindWrongAudience:
			return auditErrWrongAudience
		}
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrIdentityStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}
