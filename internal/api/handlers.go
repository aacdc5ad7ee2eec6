package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/tokenauth"
	"github.com/MrEthical07/tokenauth/internal/api/presenter"
	"github.com/MrEthical07/tokenauth/jwt"
	authmw "github.com/MrEthical07/tokenauth/middleware"
)

const (
	maxTokenRequestBytes = 8 << 10
	healthCheckTimeout   = 2 * time.Second
)

// TokenRequest accepts both the identifier/secret and the email/password
// spellings. Field matching is case-insensitive, so "Email" also works.
type TokenRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Secret     string `json:"secret"`
	Password   string `json:"password"`
}

func (p TokenRequest) credentials() (string, string) {
	identifier, secret := p.Identifier, p.Secret
	if identifier == "" {
		identifier = p.Email
	}
	if secret == "" {
		secret = p.Password
	}
	return identifier, secret
}

// handleHealth responds OK, or 503 when the identity backend does not answer.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if _, err := s.backend.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			presenter.Error(w, r, "identity store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleToken exchanges credentials for a bearer token. The token is the
// whole response body.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var payload TokenRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxTokenRequestBytes))
	if err := dec.Decode(&payload); err != nil {
		presenter.Empty(w, http.StatusBadRequest)
		return
	}

	identifier, secret := payload.credentials()
	token, err := s.engine.Login(r.Context(), identifier, secret)
	switch {
	case err == nil:
		presenter.Text(w, token, http.StatusOK)
	case errors.Is(err, tokenauth.ErrInvalidInput):
		presenter.Empty(w, http.StatusBadRequest)
	case errors.Is(err, tokenauth.ErrInvalidCredentials):
		presenter.Text(w, "Invalid credentials", http.StatusBadRequest)
	case errors.Is(err, tokenauth.ErrLoginRateLimited):
		w.Header().Set("Retry-After", retryAfter(s.engine))
		presenter.Error(w, r, "too many attempts", http.StatusTooManyRequests)
	case errors.Is(err, tokenauth.ErrIdentityStoreUnavailable):
		presenter.Error(w, r, "identity store unavailable", http.StatusServiceUnavailable)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("token issuance failed")
		presenter.Error(w, r, "internal server error", http.StatusInternalServerError)
	}
}

type meResponse struct {
	Subject string            `json:"sub"`
	TokenID string            `json:"jti"`
	Expires time.Time         `json:"expires_at"`
	Claims  map[string]string `json:"claims"`
}

// handleMe echoes the claims recovered from the bearer token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.ClaimsFromContext(r.Context())
	if !ok {
		authmw.Unauthorized(w, r, nil)
		return
	}
	resp := meResponse{
		Subject: claims.Subject(),
		TokenID: claims.TokenID(),
		Claims:  claims.Map(),
	}
	if exp, ok := claims.ExpiresAt(); ok {
		resp.Expires = exp.UTC()
	}
	presenter.JSON(w, r, resp, http.StatusOK)
}

// reject answers a missing or invalid bearer token. The verification kind is
// logged but never disclosed to the caller.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		kind, _ := jwt.KindOf(err)
		zerolog.Ctx(r.Context()).Debug().Stringer("kind", kind).Msg("bearer token rejected")
	}
	authmw.Unauthorized(w, r, err)
}

func retryAfter(engine *tokenauth.Engine) string {
	secs := int(engine.LoginCooldown() / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
