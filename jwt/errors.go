package jwt

import (
	"errors"
	"fmt"
)

var (
	// ErrMisconfiguration is returned by NewManager when the signing key is absent.
	// Callers treat it as fatal at startup.
	ErrMisconfiguration = errors.New("token service misconfigured")

	ErrMalformed     = errors.New("token malformed")
	ErrBadSignature  = errors.New("token signature invalid")
	ErrExpired       = errors.New("token expired")
	ErrWrongAudience = errors.New("token issuer or audience mismatch")
)

// Kind classifies why a token was rejected.
type Kind uint8

const (
	KindMalformed Kind = iota + 1
	KindBadSignature
	KindExpired
	KindWrongAudience
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindBadSignature:
		return "bad_signature"
	case KindExpired:
		return "expired"
	case KindWrongAudience:
		return "wrong_audience"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMalformed:
		return ErrMalformed
	case KindBadSignature:
		return ErrBadSignature
	case KindExpired:
		return ErrExpired
	case KindWrongAudience:
		return ErrWrongAudience
	default:
		return nil
	}
}

// VerificationError is the only error type returned by [Manager.Verify].
// errors.Is matches it against the sentinel of its Kind.
type VerificationError struct {
	Kind Kind
	Err  error
}

func (e *VerificationError) Error() string {
	base := "token rejected"
	if s := e.Kind.sentinel(); s != nil {
		base = s.Error()
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func (e *VerificationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the rejection kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}

func reject(kind Kind, err error) error {
	return &VerificationError{Kind: kind, Err: err}
}
