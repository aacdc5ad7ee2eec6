package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is the fixed validity window of an issued token.
	DefaultTTL = 24 * time.Hour

	algHS256  = "HS256"
	typJWT    = "JWT"
	separator = "."
)

// segment is the base64url alphabet without padding. Strict decoding rejects
// non-canonical trailing bits so that no two signature texts decode to the same bytes.
var segment = base64.RawURLEncoding.Strict()

// Config is resolved once at startup and shared by issuance and verification.
type Config struct {
	// Key is the HMAC-SHA-256 signing key. Required.
	Key []byte

	// Issuer and Audience are written into every token and, when non-empty,
	// enforced on verification.
	Issuer   string
	Audience string

	// Subject overrides the sub claim for every token. When empty the
	// principal's identifier is used.
	Subject string

	// TTL defaults to DefaultTTL.
	TTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Principal carries the identity attributes written into a token.
type Principal struct {
	ID          int64
	Identifier  string
	GivenName   string
	FamilyName  string
	DisplayName string
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

// Manager issues and verifies tokens. It is immutable after NewManager and
// safe for concurrent use.
type Manager struct {
	key           []byte
	issuer        string
	audience      string
	subject       string
	ttl           time.Duration
	now           func() time.Time
	encodedHeader string
}

// NewManager validates cfg and returns a Manager. An empty key yields
// ErrMisconfiguration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) == 0 {
		return nil, fmt.Errorf("%w: signing key is empty", ErrMisconfiguration)
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("%w: negative token ttl", ErrMisconfiguration)
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h, err := json.Marshal(header{Alg: algHS256, Typ: typJWT})
	if err != nil {
		return nil, err
	}

	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	return &Manager{
		key:           key,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		subject:       cfg.Subject,
		ttl:           cfg.TTL,
		now:           cfg.Now,
		encodedHeader: segment.EncodeToString(h),
	}, nil
}

// TTL reports the validity window applied to issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Claims builds the claim set for p as of issuedAt. A fresh jti is drawn
// on every call.
func (m *Manager) Claims(p Principal, issuedAt time.Time) *ClaimSet {
	issuedAt = issuedAt.UTC()

	sub := m.subject
	if sub == "" {
		sub = p.Identifier
	}
	display := p.DisplayName
	if display == "" {
		display = strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	}

	var c ClaimSet
	c.claims = make([]Claim, 0, 11)
	c.Set(ClaimSubject, sub)
	c.Set(ClaimTokenID, uuid.NewString())
	c.Set(ClaimIssuedAt, strconv.FormatInt(issuedAt.Unix(), 10))
	c.Set(ClaimID, strconv.FormatInt(p.ID, 10))
	c.Set(ClaimFirstName, p.GivenName)
	c.Set(ClaimLastName, p.FamilyName)
	c.Set(ClaimUserName, display)
	c.Set(ClaimEmail, p.Identifier)
	c.Set(ClaimExpiresAt, strconv.FormatInt(issuedAt.Add(m.ttl).Unix(), 10))
	if m.issuer != "" {
		c.Set(ClaimIssuer, m.issuer)
	}
	if m.audience != "" {
		c.Set(ClaimAudience, m.audience)
	}
	return &c
}

// Issue signs a new token for p, valid for TTL from now.
func (m *Manager) Issue(p Principal) (string, error) {
	return m.Sign(m.Claims(p, m.now()))
}

// Sign encodes and signs an arbitrary claim set with the fixed header.
func (m *Manager) Sign(claims *ClaimSet) (string, error) {
	if claims == nil || claims.Len() == 0 {
		return "", errors.New("empty claim set")
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}

	signingInput := m.encodedHeader + separator + segment.EncodeToString(payload)
	sig, err := gjwt.SigningMethodHS256.Sign(signingInput, m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signingInput + separator + segment.EncodeToString(sig), nil
}

// Verify checks token against the current time. It returns the payload claims
// or a *VerificationError.
func (m *Manager) Verify(token string) (*ClaimSet, error) {
	return m.VerifyAt(token, m.now())
}

// VerifyAt checks token as of now. Checks run in order: structure, signature,
// expiry, issuer and audience.
func (m *Manager) VerifyAt(token string, now time.Time) (*ClaimSet, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, reject(KindMalformed, errors.New("token must have three segments"))
	}

	rawHeader, err := segment.DecodeString(parts[0])
	if err != nil {
		return nil, reject(KindMalformed, fmt.Errorf("decode header: %w", err))
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return nil, reject(KindMalformed, fmt.Errorf("parse header: %w", err))
	}
	if h.Alg != algHS256 {
		return nil, reject(KindMalformed, fmt.Errorf("unsupported algorithm %q", h.Alg))
	}
	if h.Typ != "" && h.Typ != typJWT {
		return nil, reject(KindMalformed, fmt.Errorf("unsupported token type %q", h.Typ))
	}

	sig, err := segment.DecodeString(parts[2])
	if err != nil {
		return nil, reject(KindBadSignature, fmt.Errorf("decode signature: %w", err))
	}
	if err := gjwt.SigningMethodHS256.Verify(parts[0]+separator+parts[1], sig, m.key); err != nil {
		return nil, reject(KindBadSignature, err)
	}

	rawPayload, err := segment.DecodeString(parts[1])
	if err != nil {
		return nil, reject(KindMalformed, fmt.Errorf("decode payload: %w", err))
	}
	claims := new(ClaimSet)
	if err := json.Unmarshal(rawPayload, claims); err != nil {
		return nil, reject(KindMalformed, fmt.Errorf("parse payload: %w", err))
	}

	exp, ok := claims.ExpiresAt()
	if !ok {
		return nil, reject(KindMalformed, errors.New("missing or invalid exp claim"))
	}
	if !now.Before(exp) {
		return nil, reject(KindExpired, fmt.Errorf("expired at %s", exp.Format(time.RFC3339)))
	}

	if iss, ok := claims.Get(ClaimIssuer); ok && m.issuer != "" && iss != m.issuer {
		return nil, reject(KindWrongAudience, fmt.Errorf("unexpected issuer %q", iss))
	}
	if aud, ok := claims.Get(ClaimAudience); ok && m.audience != "" && aud != m.audience {
		return nil, reject(KindWrongAudience, fmt.Errorf("unexpected audience %q", aud))
	}

	return claims, nil
}
