// Package tokenauth exchanges an identifier/secret pair for a signed bearer
// token and validates that token on later requests.
//
// The engine is built once through [Builder.Build] and is safe to call from
// multiple goroutines afterwards. It composes the credential verifier
// (package credential), the token codec (package jwt), and optional Redis-backed
// login throttling.
//
// # Architecture boundaries
//
// tokenauth is the public surface. It exposes [Engine], [Builder], [Config], and
// value types such as [MetricsSnapshot] and [AuditEvent]. Rate limiting and the
// HTTP API live under internal/.
//
// # What this package must NOT do
//
//   - Store issued tokens. Validity is recomputed from the token text on each call.
//   - Reveal whether an identifier exists. Unknown identifiers and wrong secrets
//     both surface as [ErrInvalidCredentials].
//   - Perform I/O in Validate.
package tokenauth
