package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskzero/taskzero/internal/model"
)

// Identity resolution errors.
var (
	// ErrUnauthenticated indicates the presented token failed verification
	// for any reason (malformed, expired, bad signature, missing).
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrUserNotFound indicates the token verified but its subject no
	// longer maps to a stored user.
	ErrUserNotFound = errors.New("token subject not found")
)

// Identity is the authenticated principal resolved from a valid token.
// ExpiresAt carries the expiry of the token it was resolved from so
// callers that hold an Identity beyond the request (caches) can bound
// its lifetime by the token's.
type Identity struct {
	ID        int64
	Email     string
	ExpiresAt time.Time
}

// UserStore is the lookup capability the resolver needs from the storage
// layer. A missing user is reported as (nil, nil), not as an error.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Resolver maps bearer tokens to authenticated identities.
type Resolver struct {
	codec *TokenCodec
	store UserStore
}

// NewResolver creates a Resolver over the given codec and user store.
func NewResolver(codec *TokenCodec, store UserStore) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// Resolve verifies the token and looks up the subject in the user store.
// Token verification failures surface as ErrUnauthenticated wrapping the
// underlying cause; a verified token whose subject has been deleted
// surfaces as ErrUserNotFound.
func (r *Resolver) Resolve(ctx context.Context, tokenString string) (*Identity, error) {
	subject, expiresAt, err := r.codec.Verify(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := r.store.UserByEmail(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("lookup token subject: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &Identity{ID: user.ID, Email: user.Email, ExpiresAt: expiresAt}, nil
}

// ResolveHeader resolves an Authorization header value of the form
// "Bearer <token>". A missing or non-bearer header fails with
// ErrUnauthenticated before any verification work is done.
func (r *Resolver) ResolveHeader(ctx context.Context, header string) (*Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	return r.Resolve(ctx, token)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
