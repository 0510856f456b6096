package middleware

import (
	"io"
	"net/http"
	"strings"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/logx"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(raw string) (*auth.Identity, error)
}

// Identify stores the caller identity on the request context when the
// bearer token verifies and passes every request through.
func Identify(v TokenVerifier, logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearerToken(r); ok {
				id, err := v.Verify(raw)
				if err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				} else {
					logger.Debug("access token rejected", logx.Err(err))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a valid bearer token with 401
// and stores the caller identity on the request context. An identity
// already set by Identify is reused.
func RequireAuth(v TokenVerifier, logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.IdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := bearerToken(r)
			if !ok {
				deny(w, logger, http.StatusUnauthorized, "unauthenticated")
				return
			}
			id, err := v.Verify(raw)
			if err != nil {
				logger.Debug("access token rejected", logx.Err(err))
				deny(w, logger, http.StatusUnauthorized, "unauthenticated")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles lets through identities holding any of roles. Must run after RequireAuth.
func RequireRoles(logger logx.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				deny(w, logger, http.StatusUnauthorized, "unauthenticated")
				return
			}
			if !id.HasAnyRole(roles...) {
				deny(w, logger, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func deny(w http.ResponseWriter, logger logx.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	if _, err := io.WriteString(w, `{"error":"`+msg+`"}`+"\n"); err != nil {
		logger.Debug("auth response write failed", logx.Err(err))
	}
}
