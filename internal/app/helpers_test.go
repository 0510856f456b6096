package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/testutil/testlog"
)

func stubNewPool(t *testing.T, fn func(context.Context, string) (*pgxpool.Pool, error)) {
	t.Helper()
	orig := newPool
	newPool = fn
	t.Cleanup(func() { newPool = orig })
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{base: time.Second, attempt: 1, want: time.Second},
		{base: time.Second, attempt: 2, want: 2 * time.Second},
		{base: time.Second, attempt: 4, want: 8 * time.Second},
		{base: time.Second, attempt: 5, want: dbMaxBackoff},
		{base: time.Second, attempt: 50, want: dbMaxBackoff},
		{base: 0, attempt: 3, want: 0},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, backoff(tt.base, tt.attempt), "base=%s attempt=%d", tt.base, tt.attempt)
	}
}

func TestConnectDbWithRetry_RecoversAfterFailures(t *testing.T) {
	want := &pgxpool.Pool{}
	calls := 0
	stubNewPool(t, func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		require.Equal(t, "postgres://stub", dsn)
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return want, nil
	})

	logs := testlog.New()
	pool, err := connectDbWithRetry(context.Background(), logs.Logger(), "postgres://stub", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Same(t, want, pool)
	assert.Equal(t, 3, calls)
	assert.True(t, logs.Has("warn", "db connect failed, retrying"))
	assert.True(t, logs.Has("info", "db connected"))
}

func TestConnectDbWithRetry_GivesUp(t *testing.T) {
	boom := errors.New("db boom")
	calls := 0
	stubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		return nil, boom
	})

	pool, err := connectDbWithRetry(context.Background(), logx.Nop(), "postgres://stub", 3, 0)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Nil(t, pool)
	assert.Equal(t, 3, calls)
}

func TestConnectDbWithRetry_AtLeastOneAttempt(t *testing.T) {
	calls := 0
	stubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		return nil, errors.New("down")
	})

	_, err := connectDbWithRetry(context.Background(), logx.Nop(), "postgres://stub", 0, 0)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectDbWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		return nil, errors.New("down")
	})

	pool, err := connectDbWithRetry(ctx, logx.Nop(), "postgres://stub", 3, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pool)
}
