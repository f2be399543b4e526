package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors distinguishing why a bearer token was rejected.  Handlers
// map all of them to a 401 without repeating the reason to the client.
var (
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenMissingSubject = errors.New("token has no user id")
)

// TokenIssuer mints confirmation codes and short-lived access tokens.  Both
// are keyed with the same process-wide secret.  The clock is injectable so
// tests can issue tokens at a fixed instant.
type TokenIssuer struct {
	signer *Signer
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer signing with secret and stamping access
// tokens with the given lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signer: NewSigner(secret),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer using now as its clock.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// ConfirmationCode signs the username into an opaque code.  The code is
// deterministic and carries no expiry: it can be exchanged for an access
// token any number of times as long as the secret stays the same.
func (ti *TokenIssuer) ConfirmationCode(username string) string {
	return ti.signer.Sign(username)
}

// IssueAccessToken signs an HS256 token for the user.  The exp claim is a
// string of unix seconds, which the verifier parses back leniently.
func (ti *TokenIssuer) IssueAccessToken(userID uint64) (string, error) {
	exp := ti.now().Add(ti.ttl).Unix()
	claims := jwt.MapClaims{
		"token_type": "access",
		"exp":        strconv.FormatInt(exp, 10),
		"user_id":    userID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(ti.secret)
}

// TokenVerifier checks access tokens presented by clients.  Possession of a
// validly signed, unexpired token is the whole proof of identity; nothing
// is looked up server-side here and nothing can revoke a token before its
// exp passes.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier builds a verifier for tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of the verifier using now as its clock.
func (tv *TokenVerifier) WithClock(now func() time.Time) *TokenVerifier {
	cp := *tv
	cp.now = now
	return &cp
}

// VerifyAccessToken validates signature and expiry and returns the user id
// the token was issued for.  Claims are validated by hand because the exp
// claim is serialized as a string, which the library's validator does not
// accept as a numeric date.
func (tv *TokenVerifier) VerifyAccessToken(raw string) (uint64, error) {
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return tv.secret, nil
		},
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !tok.Valid {
		return 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}

	exp, err := expiryOf(claims)
	if err != nil {
		return 0, err
	}
	if exp.Before(tv.now()) {
		return 0, ErrTokenExpired
	}

	v, present := claims["user_id"]
	if !present {
		return 0, ErrTokenMissingSubject
	}
	switch id := v.(type) {
	case float64:
		return uint64(id), nil
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return 0, ErrTokenInvalid
		}
		return n, nil
	default:
		return 0, ErrTokenInvalid
	}
}

// expiryOf reads the exp claim, accepting both the string form emitted by
// IssueAccessToken and a plain numeric claim.
func expiryOf(claims jwt.MapClaims) (time.Time, error) {
	v, present := claims["exp"]
	if !present {
		return time.Time{}, ErrTokenInvalid
	}
	switch e := v.(type) {
	case string:
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			return time.Time{}, ErrTokenInvalid
		}
		return time.Unix(n, 0), nil
	case float64:
		return time.Unix(int64(e), 0), nil
	default:
		return time.Time{}, ErrTokenInvalid
	}
}
