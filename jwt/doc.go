// Package jwt issues and verifies compact HS256 bearer tokens.
//
// A token is three base64url segments joined by dots: a fixed header, an ordered
// [ClaimSet] payload, and an HMAC-SHA-256 signature over the first two segments.
// Tokens are never stored; every call to [Manager.Verify] recomputes validity from
// the token text, the signing key, and the current time.
//
// # What this package must NOT do
//
//   - Perform I/O of any kind. Verify is called on every protected request.
//   - Accept any algorithm other than HS256, including "none".
//   - Hold mutable state after [NewManager] returns.
package jwt
