package repository

import (
	"fmt"
	"testing"

	"ecommerce-api/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514"}

	require.True(t, IsDuplicate(dup))
	require.False(t, IsDuplicate(fk))
	require.True(t, IsForeignKey(fk))
	require.True(t, IsCheck(check))
	require.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	require.False(t, IsNotFound(dup))
}

func TestMapWriteErr(t *testing.T) {
	t.Parallel()

	require.NoError(t, mapWriteErr(nil))
	require.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: "23505"}), apperr.ErrConflict)
	require.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: "23503"}), apperr.ErrInvalid)
	require.ErrorIs(t, mapWriteErr(&pgconn.PgError{Code: "23514"}), apperr.ErrInvalid)

	other := fmt.Errorf("boom")
	require.Equal(t, other, mapWriteErr(other))
}
