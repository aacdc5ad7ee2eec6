package credential

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidInput means the caller omitted the identifier or the secret.
	ErrInvalidInput = errors.New("identifier and secret are required")
	// ErrInvalidCredentials covers both an unknown identifier and a wrong secret.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned by stores when no identity matches.
	ErrNotFound = errors.New("identity not found")
	// ErrStoreUnavailable wraps backend failures of a Store.
	ErrStoreUnavailable = errors.New("identity store unavailable")
)

// Identity is an immutable account record. SecretHash holds an Argon2id PHC
// string, never the plaintext secret.
type Identity struct {
	ID          int64
	Identifier  string
	SecretHash  string
	GivenName   string
	FamilyName  string
	DisplayName string
}

// Name returns DisplayName, falling back to "GivenName FamilyName".
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return strings.TrimSpace(i.GivenName + " " + i.FamilyName)
}

// IdentityStore looks up identities by their exact, case-sensitive identifier.
// Implementations return ErrNotFound when nothing matches and must be safe
// for concurrent use.
type IdentityStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (Identity, error)
}
