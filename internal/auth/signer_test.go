package auth

import (
	"testing"
)

func TestSignUnsign_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSigner("test-secret")
	for _, payload := range []string{
		"alice",
		"me@example.com",
		"name:with:colons",
		"",
	} {
		signed := s.Sign(payload)
		got, err := s.Unsign(signed)
		if err != nil {
			t.Fatalf("Unsign(%q) error: %v", signed, err)
		}
		if got != payload {
			t.Fatalf("round trip mismatch: got %q want %q", got, payload)
		}
	}
}

func TestSign_Deterministic(t *testing.T) {
	t.Parallel()

	s := NewSigner("test-secret")
	if s.Sign("alice") != s.Sign("alice") {
		t.Fatal("same payload and secret must produce the same signed string")
	}
}

func TestUnsign_Tampered(t *testing.T) {
	t.Parallel()

	s := NewSigner("test-secret")
	signed := s.Sign("alice")

	// Flip one bit of the payload; the signature no longer matches.
	b := []byte(signed)
	b[0] ^= 0x01
	if _, err := s.Unsign(string(b)); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestUnsign_WrongSecret(t *testing.T) {
	t.Parallel()

	signed := NewSigner("right-secret").Sign("alice")
	if _, err := NewSigner("wrong-secret").Unsign(signed); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestUnsign_NoSeparator(t *testing.T) {
	t.Parallel()

	if _, err := NewSigner("k").Unsign("no-separator-here"); err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
