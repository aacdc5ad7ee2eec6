package tokenauth

import (
	"errors"

	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/jwt"
)

var (
	// ErrInvalidInput means the identifier or secret was empty.
	ErrInvalidInput = credential.ErrInvalidInput
	// ErrInvalidCredentials is returned for an unknown identifier or a wrong secret.
	ErrInvalidCredentials = credential.ErrInvalidCredentials
	// ErrIdentityStoreUnavailable wraps identity store backend failures.
	ErrIdentityStoreUnavailable = credential.ErrStoreUnavailable
	// ErrMisconfiguration is fatal at startup; Build returns it for a missing
	// signing key or invalid configuration.
	ErrMisconfiguration = jwt.ErrMisconfiguration

	ErrLoginRateLimited = errors.New("login rate limited")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEngineNotReady   = errors.New("engine not initialized")
)
