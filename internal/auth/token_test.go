package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAccessToken_Claims(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer(testSecret, 5*24*time.Hour).WithClock(fixedClock(issuedAt))

	raw, err := ti.IssueAccessToken(42)
	require.NoError(t, err)

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "access", claims["token_type"])
	assert.Equal(t, float64(42), claims["user_id"])
	// exp is a string of unix seconds, five days after issuance.
	wantExp := strconv.FormatInt(issuedAt.Add(5*24*time.Hour).Unix(), 10)
	assert.Equal(t, wantExp, claims["exp"])
}

func TestVerifyAccessToken_Success(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer(testSecret, time.Hour)
	raw, err := ti.IssueAccessToken(7)
	require.NoError(t, err)

	id, err := NewTokenVerifier(testSecret).VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer(testSecret, -time.Minute)
	raw, err := ti.IssueAccessToken(7)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = NewTokenVerifier(testSecret).VerifyAccessToken(raw)
	if err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccessToken_Tampered(t *testing.T) {
	t.Parallel()

	raw, err := NewTokenIssuer(testSecret, time.Hour).IssueAccessToken(7)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	// Flip a single bit in the payload segment.
	b := []byte(raw)
	i := len(b) / 2
	b[i] ^= 0x01
	if _, err := NewTokenVerifier(testSecret).VerifyAccessToken(string(b)); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := NewTokenIssuer("right-secret", time.Hour).IssueAccessToken(7)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := NewTokenVerifier("wrong-secret").VerifyAccessToken(raw); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyAccessToken_MissingSubject(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"token_type": "access",
		"exp":        strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret).VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrTokenMissingSubject)
}

func TestVerifyAccessToken_NumericExpAccepted(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"token_type": "access",
		"exp":        time.Now().Add(time.Hour).Unix(),
		"user_id":    9,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	id, err := NewTokenVerifier(testSecret).VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)
}

func TestVerifyAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenVerifier(testSecret).VerifyAccessToken("not.a.token"); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestConfirmationCode_RoundTrip(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer(testSecret, time.Hour)
	code := ti.ConfirmationCode("alice")

	got, err := NewSigner(testSecret).Unsign(code)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}
