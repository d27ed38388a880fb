package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	return codec
}

func TestNewTokenCodec_MissingSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec("", time.Minute); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestNewTokenCodec_DefaultTTL(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("secret", 0)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	if codec.TTL() != DefaultTokenTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultTokenTTL, codec.TTL())
	}
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	token, err := codec.Issue("user@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, expiresAt, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "user@test.com" {
		t.Errorf("expected subject user@test.com, got %s", subject)
	}
	if remaining := time.Until(expiresAt); remaining <= 0 || remaining > codec.TTL() {
		t.Errorf("expiry out of range: %v remaining with %v TTL", remaining, codec.TTL())
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	// Issue at a frozen point in the past, verify with the real clock.
	issuedAt := time.Now().Add(-time.Hour)
	codec.WithClock(func() time.Time { return issuedAt })

	token, err := codec.Issue("user@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	codec.WithClock(time.Now)

	if _, _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	token, err := codec.Issue("user@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one character of the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	other, err := NewTokenCodec("a-different-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}

	token, err := other.Issue("user@test.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := codec.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"single segment", "abcdef"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, _, err := codec.Verify(tt.token); !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("expected ErrTokenMalformed, got %v", err)
			}
		})
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)

	// A token signed with alg=none must not verify, even though its
	// (empty) signature is "valid" under that algorithm.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user@test.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign with none: %v", err)
	}

	if _, _, err := codec.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
