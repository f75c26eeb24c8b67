package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	username, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want %q", username, "alice")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Minute)
	verifier := NewJWTManager("secret-b", time.Minute)

	token, err := issuer.Generate("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestValidateMalformedToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
