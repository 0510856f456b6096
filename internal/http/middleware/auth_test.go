package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/logx"
)

type stubVerifier map[string]*auth.Identity

func (s stubVerifier) Verify(raw string) (*auth.Identity, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func guarded(roles ...string) http.Handler {
	v := stubVerifier{
		"admin-token":  {UserID: 1, Roles: []string{"admin"}},
		"client-token": {UserID: 2, Roles: []string{"client"}},
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		w.Header().Set("X-User", id.Roles[0])
		w.WriteHeader(http.StatusOK)
	})
	var h http.Handler = final
	if len(roles) > 0 {
		h = RequireRoles(logx.Nop(), roles...)(h)
	}
	return RequireAuth(v, logx.Nop())(h)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		roles  []string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic admin-token", want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer client-token", want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer client-token", want: http.StatusOK},
		{name: "role allowed", header: "Bearer admin-token", roles: []string{"admin", "manager"}, want: http.StatusOK},
		{name: "role denied", header: "Bearer client-token", roles: []string{"admin", "manager"}, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			guarded(tt.roles...).ServeHTTP(rr, req)

			require.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
				require.JSONEq(t, `{"error":"unauthenticated"}`, rr.Body.String())
			}
		})
	}
}

func TestRequireRoles_WithoutIdentity(t *testing.T) {
	t.Parallel()

	h := RequireRoles(logx.Nop(), "admin")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not be called")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	v := stubVerifier{"client-token": {UserID: 2, Roles: []string{"client"}}}
	calls := 0
	counting := verifierFunc(func(raw string) (*auth.Identity, error) {
		calls++
		return v.Verify(raw)
	})

	tests := []struct {
		name     string
		header   string
		wantUser int64
		wantCode int
	}{
		{name: "anonymous passes through", wantCode: http.StatusUnauthorized},
		{name: "bad token passes through", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "valid token sets identity", header: "Bearer client-token", wantUser: 2, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			var seen int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id, ok := auth.IdentityFromContext(r.Context()); ok {
					seen = id.UserID
				}
				w.WriteHeader(http.StatusOK)
			})

			// Identify never rejects, RequireAuth after it does.
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			Identify(counting, logx.Nop())(next).ServeHTTP(rr, req)
			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tt.wantUser, seen)

			rr = httptest.NewRecorder()
			calls = 0
			Identify(counting, logx.Nop())(RequireAuth(counting, logx.Nop())(next)).ServeHTTP(rr, req)
			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, 1, calls, "verified identity is reused")
			}
		})
	}
}

type verifierFunc func(raw string) (*auth.Identity, error)

func (f verifierFunc) Verify(raw string) (*auth.Identity, error) { return f(raw) }
