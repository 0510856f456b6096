//go:build integration

package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"ecommerce-api/internal/app"
)

func startPostgres(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	t.Setenv("POSTGRES_HOST", host)
	t.Setenv("POSTGRES_PORT", port.Port())
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "shop")
	t.Setenv("POSTGRES_DB", "shop")
}

func TestMustBuildContainer_ServesAPI(t *testing.T) {
	startPostgres(t)
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("STORAGE_LOCAL_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := app.MustBuildContainer(ctx)

	err := c.Invoke(func(pool *pgxpool.Pool, mux http.Handler) {
		defer pool.Close()

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code, "database is reachable")

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		body := `{"name":"Ada","surname":"Lovelace","email":"ada@example.com","password":"s3cret-pass","password_confirmation":"s3cret-pass"}`
		rr = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/products", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	require.NoError(t, err)
}
