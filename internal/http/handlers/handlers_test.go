package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/testutil/testlog"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandlers_Ping(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	New(nil, nil).Ping(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestHandlers_Healthcheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		db     Pinger
		want   int
		warned bool
	}{
		{name: "no database", want: http.StatusNoContent},
		{name: "database up", db: pingFunc(func(context.Context) error { return nil }), want: http.StatusNoContent},
		{name: "database down", db: pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), want: http.StatusServiceUnavailable, warned: true},
		{
			name: "ping gets a deadline",
			db: pingFunc(func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					return errors.New("no deadline")
				}
				return nil
			}),
			want: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logs := testlog.New()
			rr := httptest.NewRecorder()
			New(logs.Logger(), tt.db).HealthcheckHead(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))

			assert.Equal(t, tt.want, rr.Code)
			assert.Empty(t, rr.Body.String())
			assert.Equal(t, tt.warned, logs.Has("warn", "healthcheck: database unreachable"))
		})
	}
}

func TestHandlers_Fallbacks(t *testing.T) {
	t.Parallel()

	h := New(nil, nil)

	rr := httptest.NewRecorder()
	h.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.MethodNotAllowed(rr, httptest.NewRequest(http.MethodPut, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rr.Body.String())
}
