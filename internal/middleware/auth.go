package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskzero/taskzero/internal/auth"
	"github.com/taskzero/taskzero/internal/metrics"
)

// IdentityCache is the caching capability the auth middleware uses to
// skip token verification and user lookup for recently seen tokens.
// remaining is the token's remaining lifetime at cache-fill time;
// implementations must not serve an entry past that window.
type IdentityCache interface {
	GetIdentity(ctx context.Context, fingerprint string) (*auth.Identity, error)
	SetIdentity(ctx context.Context, fingerprint string, identity *auth.Identity, remaining time.Duration) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver *auth.Resolver
	// Cache is optional; when nil every request verifies the token and
	// hits the user store.
	Cache   IdentityCache
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates requests via a bearer
// token. It verifies the token, resolves the subject to a stored user,
// and injects the resulting identity into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			fingerprint := auth.Fingerprint(token)

			if cfg.Cache != nil {
				identity, _ := cfg.Cache.GetIdentity(r.Context(), fingerprint)
				if identity != nil {
					rec.IncIdentityCacheHit()
					ctx := auth.ContextWithIdentity(r.Context(), identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				rec.IncIdentityCacheMiss()
			}

			identity, err := cfg.Resolver.Resolve(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", authFailureReason(err)),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Bound the cache entry by the token's remaining life so a
			// hit can never authenticate past exp.
			if cfg.Cache != nil {
				if remaining := time.Until(identity.ExpiresAt); remaining > 0 {
					_ = cfg.Cache.SetIdentity(r.Context(), fingerprint, identity, remaining)
				}
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authFailureReason maps a resolution error to a log label. The HTTP
// response never distinguishes failure modes.
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, auth.ErrUserNotFound):
		return "unknown_subject"
	default:
		return "invalid_token"
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Could not validate credentials!","code":"UNAUTHORIZED"}`))
}
