package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/tokenauth/password"
)

const dummySecret = "tokenauth-timing-equalizer"

// Verifier is safe for concurrent use; it holds no mutable state.
type Verifier struct {
	store     IdentityStore
	hasher    *password.Argon2
	dummyHash string
}

// NewVerifier precomputes a throwaway hash so that lookups of unknown
// identifiers cost the same as a wrong secret.
func NewVerifier(store IdentityStore, hasher *password.Argon2) (*Verifier, error) {
	if store == nil {
		return nil, errors.New("credential: nil store")
	}
	if hasher == nil {
		return nil, errors.New("credential: nil hasher")
	}
	dummy, err := hasher.Hash(dummySecret)
	if err != nil {
		return nil, fmt.Errorf("credential: prepare dummy hash: %w", err)
	}
	return &Verifier{store: store, hasher: hasher, dummyHash: dummy}, nil
}

// Verify returns the identity whose identifier and secret both match.
//
// It returns ErrInvalidInput when either argument is empty, ErrInvalidCredentials
// when no identity matches, and ErrStoreUnavailable when the store fails.
func (v *Verifier) Verify(ctx context.Context, identifier, secret string) (Identity, error) {
	if identifier == "" || secret == "" {
		return Identity{}, ErrInvalidInput
	}

	id, err := v.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			v.equalize(secret)
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	// Stores backed by case-insensitive collations may return near matches.
	if id.Identifier != identifier {
		v.equalize(secret)
		return Identity{}, ErrInvalidCredentials
	}

	ok, err := v.hasher.Verify(secret, id.SecretHash)
	if err != nil {
		// An unusable stored hash returns before key derivation.
		v.equalize(secret)
		return Identity{}, ErrInvalidCredentials
	}
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return id, nil
}

func (v *Verifier) equalize(secret string) {
	_, _ = v.hasher.Verify(secret, v.dummyHash)
}
