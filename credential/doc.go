// Package credential checks a submitted identifier/secret pair against an
// identity store.
//
// The store is injected through the single-method [IdentityStore] interface so that the
// static in-memory store used for demos and the Redis-backed store used in
// deployments share the same [Verifier] logic.
//
// Unknown identifiers and wrong secrets are indistinguishable to the caller:
// both return [ErrInvalidCredentials], and both pay for one Argon2id derivation.
package credential
