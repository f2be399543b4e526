// Package auth implements the passwordless authentication core: the HMAC
// signer behind confirmation codes, access token issuance and verification,
// and the role/ownership permission policy.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadSignature is returned by Unsign when the value is malformed or its
// signature does not match the payload.
var ErrBadSignature = errors.New("bad signature")

// Signer produces and verifies tamper-evident signed strings.  The output
// is "<payload>:<base64url(HMAC-SHA256(secret, payload))>".  Signing is
// deterministic: the same payload under the same secret always yields the
// same signed string, and there is no embedded timestamp, so a signed value
// never expires on its own.  Callers needing a time bound must add one.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer keyed with the given secret.  The secret is
// injected rather than read from ambient state so tests can pin fixtures.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign appends the payload's signature, separated by a colon.
func (s *Signer) Sign(payload string) string {
	return payload + ":" + s.signature(payload)
}

// Unsign verifies a value produced by Sign and returns the original
// payload unchanged.  The payload itself may contain colons; only the part
// after the last colon is treated as the signature.
func (s *Signer) Unsign(signed string) (string, error) {
	i := strings.LastIndexByte(signed, ':')
	if i < 0 {
		return "", ErrBadSignature
	}
	payload, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.signature(payload))) {
		return "", ErrBadSignature
	}
	return payload, nil
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
