package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Registered and identity claim names written by [Manager.Issue].
const (
	ClaimSubject   = "sub"
	ClaimTokenID   = "jti"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"

	ClaimID        = "Id"
	ClaimFirstName = "FirstName"
	ClaimLastName  = "LastName"
	ClaimUserName  = "UserName"
	ClaimEmail     = "Email"
)

// Claim is a single name/value pair of a ClaimSet.
type Claim struct {
	Name  string
	Value string
}

// ClaimSet is an ordered mapping from claim name to string value.
// Names are unique; Set on an existing name replaces its value in place.
//
// The zero value is an empty set ready for use. A ClaimSet returned by
// [Manager.Verify] is owned by the caller.
type ClaimSet struct {
	claims []Claim
}

// Set adds or replaces the claim name.
func (c *ClaimSet) Set(name, value string) {
	for i := range c.claims {
		if c.claims[i].Name == name {
			c.claims[i].Value = value
			return
		}
	}
	c.claims = append(c.claims, Claim{Name: name, Value: value})
}

// Get returns the value of name.
func (c *ClaimSet) Get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, cl := range c.claims {
		if cl.Name == name {
			return cl.Value, true
		}
	}
	return "", false
}

func (c *ClaimSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.claims)
}

// Claims returns a copy of the claims in insertion order.
func (c *ClaimSet) Claims() []Claim {
	if c == nil {
		return nil
	}
	out := make([]Claim, len(c.claims))
	copy(out, c.claims)
	return out
}

// Map returns the claims as an unordered map.
func (c *ClaimSet) Map() map[string]string {
	out := make(map[string]string, c.Len())
	if c == nil {
		return out
	}
	for _, cl := range c.claims {
		out[cl.Name] = cl.Value
	}
	return out
}

func (c *ClaimSet) Subject() string {
	v, _ := c.Get(ClaimSubject)
	return v
}

func (c *ClaimSet) TokenID() string {
	v, _ := c.Get(ClaimTokenID)
	return v
}

func (c *ClaimSet) IssuedAt() (time.Time, bool) {
	return c.unixClaim(ClaimIssuedAt)
}

func (c *ClaimSet) ExpiresAt() (time.Time, bool) {
	return c.unixClaim(ClaimExpiresAt)
}

func (c *ClaimSet) unixClaim(name string) (time.Time, bool) {
	v, ok := c.Get(name)
	if !ok {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

// numericClaims are written as JSON numbers so that standard JWT libraries
// read them as NumericDate values.
func isNumericClaim(name string) bool {
	switch name {
	case ClaimIssuedAt, ClaimExpiresAt, ClaimNotBefore:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (c ClaimSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(32 * (len(c.claims) + 1))
	buf.WriteByte('{')
	for i, cl := range c.claims {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(cl.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		if isNumericClaim(cl.Name) {
			if n, err := strconv.ParseInt(cl.Value, 10, 64); err == nil {
				buf.WriteString(strconv.FormatInt(n, 10))
				continue
			}
		}
		value, err := json.Marshal(cl.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping member order. Values must be
// strings or numbers; nested values, booleans, nulls, and duplicate names are rejected.
func (c *ClaimSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("claim set must be a JSON object")
	}

	claims := make([]Claim, 0, 12)
	seen := make(map[string]struct{}, 12)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return errors.New("claim name must be a string")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate claim %q", name)
		}
		seen[name] = struct{}{}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		var value string
		switch v := tok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		default:
			return fmt.Errorf("claim %q has unsupported value type", name)
		}
		claims = append(claims, Claim{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after claim set")
	}

	c.claims = claims
	return nil
}
