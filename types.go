package tokenauth

import (
	"github.com/MrEthical07/tokenauth/credential"
	"github.com/MrEthical07/tokenauth/jwt"
)

// Identity is re-exported so callers seeding stores need not import credential.
type Identity = credential.Identity

// IdentityStore is the single lookup the engine needs from account storage.
type IdentityStore = credential.IdentityStore

// ClaimSet is the validated payload returned by Engine.Validate.
type ClaimSet = jwt.ClaimSet

func principalOf(id credential.Identity) jwt.Principal {
	return jwt.Principal{
		ID:          id.ID,
		Identifier:  id.Identifier,
		GivenName:   id.GivenName,
		FamilyName:  id.FamilyName,
		DisplayName: id.DisplayName,
	}
}
