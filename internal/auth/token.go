package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// DefaultTokenTTL is the validity window for issued tokens when no
// explicit TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

// Token verification errors. Each failure cause is distinct internally
// even though the HTTP boundary collapses them all into a 401.
var (
	// ErrMissingSecret indicates the signing secret is unset. This is a
	// configuration error, fatal at startup, never a per-request condition.
	ErrMissingSecret = errors.New("signing secret is not configured")
	// ErrTokenMalformed indicates the token could not be parsed into claims.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenExpired indicates the token's expiry time has passed.
	ErrTokenExpired = errors.New("token is expired")
	// ErrInvalidSignature indicates the signature did not verify.
	ErrInvalidSignature = errors.New("token signature is invalid")
)

// TokenCodec creates and verifies signed, time-limited bearer tokens.
// It holds only immutable configuration and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a TokenCodec signing with the given secret.
// A zero ttl falls back to DefaultTokenTTL. An empty secret is rejected
// so a misconfigured process halts at startup instead of minting
// unsigned-in-practice tokens.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the codec's clock. Used by tests to simulate expiry.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a signed HS256 token whose subject is the given claim.
// Claims: sub, iat = now, exp = now + ttl, jti = ULID.
func (c *TokenCodec) Issue(subject string) (string, error) {
	now := c.now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify validates the signature and expiry of a token string and
// returns its subject claim together with its expiry time. Only HS256
// is accepted; a token signed under any other algorithm fails with
// ErrInvalidSignature even if its signature would validate under that
// algorithm. Tokens without an exp claim are rejected so nothing this
// codec accepts is valid forever.
func (c *TokenCodec) Verify(tokenString string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", time.Time{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", time.Time{}, ErrInvalidSignature
		default:
			return "", time.Time{}, ErrTokenMalformed
		}
	}

	if !token.Valid {
		return "", time.Time{}, ErrInvalidSignature
	}

	return claims.Subject, claims.ExpiresAt.Time, nil
}
