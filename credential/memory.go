package credential

import (
	"context"
	"fmt"
)

// MemoryStore is a fixed set of identities loaded at startup. It is never
// mutated after construction.
type MemoryStore struct {
	byIdentifier map[string]Identity
}

var _ IdentityStore = (*MemoryStore)(nil)

// NewMemoryStore rejects empty or duplicate identifiers and identities
// without a secret hash.
func NewMemoryStore(identities ...Identity) (*MemoryStore, error) {
	m := make(map[string]Identity, len(identities))
	for _, id := range identities {
		if id.Identifier == "" {
			return nil, fmt.Errorf("identity %d has an empty identifier", id.ID)
		}
		if id.SecretHash == "" {
			return nil, fmt.Errorf("identity %q has no secret hash", id.Identifier)
		}
		if _, dup := m[id.Identifier]; dup {
			return nil, fmt.Errorf("duplicate identifier %q", id.Identifier)
		}
		m[id.Identifier] = id
	}
	return &MemoryStore{byIdentifier: m}, nil
}

func (s *MemoryStore) FindByIdentifier(_ context.Context, identifier string) (Identity, error) {
	id, ok := s.byIdentifier[identifier]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) Len() int {
	return len(s.byIdentifier)
}
