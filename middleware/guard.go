package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/tokenauth/jwt"
)

// Validator is satisfied by *tokenauth.Engine and *jwt.Manager adapters.
type Validator interface {
	Validate(ctx context.Context, token string) (*jwt.ClaimSet, error)
}

// RejectFunc writes the response for a request whose token was missing or
// rejected. err is nil when no bearer token was present.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

type claimsContextKey struct{}

// ClaimsFromContext returns the claims attached by RequireToken.
func ClaimsFromContext(ctx context.Context) (*jwt.ClaimSet, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.ClaimSet)
	return claims, ok && claims != nil
}

// WithClaims attaches claims to ctx the way RequireToken does.
func WithClaims(ctx context.Context, claims *jwt.ClaimSet) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// RequireToken rejects requests without a valid bearer token with a plain 401.
func RequireToken(v Validator) func(http.Handler) http.Handler {
	return RequireTokenFunc(v, Unauthorized)
}

// RequireTokenFunc is RequireToken with a custom rejection writer.
func RequireTokenFunc(v Validator, reject RejectFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = Unauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				reject(w, r, nil)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w, r, nil)
				return
			}

			claims, err := v.Validate(r.Context(), token)
			if err != nil {
				reject(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Unauthorized writes 401 with a Bearer challenge. The rejection reason is
// not disclosed beyond the RFC 6750 error code.
func Unauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	challenge := `Bearer`
	if err != nil {
		challenge = `Bearer error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
