package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("alice@local", "Alice", "https://a/avatar.png")
	if err != nil {
		t.Fatal(err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Email != "alice@local" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.JTI == "" {
		t.Fatal("expected a token id")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue("alice@local", "Alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenIssuer("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	token, err := issuer.Issue("alice@local", "Alice", "")
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(token, ".")
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	forged := strings.Replace(string(payload), "alice@local", "mallory@local", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	if _, err := issuer.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	claims := Claims{Email: "alice@local", Exp: time.Now().Add(-time.Hour).Unix(), JTI: "x"}
	payload, _ := json.Marshal(claims)
	signing := headerB64 + "." + base64.RawURLEncoding.EncodeToString(payload)
	token := signing + "." + issuer.sign(signing)

	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	for _, token := range []string{"", "abc", "a.b", "a.b.c.d", "!!.!!.!!"} {
		if _, err := issuer.Verify(token); err == nil {
			t.Fatalf("expected error for %q", token)
		}
	}
}
