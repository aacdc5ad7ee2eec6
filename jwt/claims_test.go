package jwt

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClaimSetSetReplacesInPlace(t *testing.T) {
	var c ClaimSet
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	want := []Claim{{Name: "a", Value: "3"}, {Name: "b", Value: "2"}}
	if diff := cmp.Diff(want, c.Claims()); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimSetJSONPreservesOrderAndNumericDates(t *testing.T) {
	var c ClaimSet
	c.Set(ClaimSubject, "foo@gmail.com")
	c.Set(ClaimIssuedAt, "1767323045")
	c.Set(ClaimID, "1")
	c.Set(ClaimExpiresAt, "1767409445")

	raw, err := json.Marshal(&c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"sub":"foo@gmail.com","iat":1767323045,"Id":"1","exp":1767409445}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}

	var back ClaimSet
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(c.Claims(), back.Claims()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimSetMarshalCanonicalizesNumericDates(t *testing.T) {
	var c ClaimSet
	c.Set(ClaimIssuedAt, "007")
	c.Set(ClaimExpiresAt, "+99999999999")
	c.Set(ClaimNotBefore, "-0")

	raw, err := json.Marshal(&c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"iat":7,"exp":99999999999,"nbf":0}`
	if string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestClaimSetUnmarshalRejects(t *testing.T) {
	cases := map[string]string{
		"array":         `["a"]`,
		"nested object": `{"a":{"b":"c"}}`,
		"array value":   `{"aud":["x","y"]}`,
		"boolean":       `{"admin":true}`,
		"null":          `{"sub":null}`,
		"duplicate":     `{"sub":"a","sub":"b"}`,
		"trailing":      `{"sub":"a"} {}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var c ClaimSet
			if err := json.Unmarshal([]byte(input), &c); err == nil {
				t.Fatalf("expected %s to be rejected, got %+v", input, c.Claims())
			}
		})
	}
}

func TestClaimSetNilSafeAccessors(t *testing.T) {
	var c *ClaimSet
	if c.Len() != 0 || c.Claims() != nil {
		t.Fatal("expected empty nil claim set")
	}
	if _, ok := c.Get(ClaimSubject); ok {
		t.Fatal("expected no claim on nil set")
	}
	if len(c.Map()) != 0 {
		t.Fatal("expected empty map for nil set")
	}
}
