// Package middleware adapts token validation to net/http.
//
// [RequireToken] reads the Authorization header, validates the bearer token,
// and stores the resulting claims in the request context for
// [ClaimsFromContext]. Requests without a valid token get 401 before the
// wrapped handler runs.
//
// # What this package must NOT do
//
//   - Parse or sign tokens directly (delegates to the Validator).
//   - Make authorization decisions beyond pass/reject.
package middleware
