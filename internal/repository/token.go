package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/domain"
)

// TokenRepo stores refresh and password reset tokens.
type TokenRepo struct{ db *pgxpool.Pool }

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(db *pgxpool.Pool) *TokenRepo { return &TokenRepo{db: db} }

// Create stores t and fills its generated fields.
func (r *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	return insertToken(ctx, r.db, t)
}

// Find returns the token with the given value and type, nil when absent.
func (r *TokenRepo) Find(ctx context.Context, value string, typ domain.TokenType) (*domain.Token, error) {
	var t domain.Token
	err := r.db.QueryRow(ctx, `
        SELECT id, user_id, token, type, is_revoked, expires_at, created_at
        FROM tokens
        WHERE token = $1 AND type = $2
    `, value, string(typ)).Scan(&t.ID, &t.UserID, &t.Token, &t.Type, &t.IsRevoked, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

// Revoke marks the token as revoked and returns true if it was active.
func (r *TokenRepo) Revoke(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `UPDATE tokens SET is_revoked = true WHERE id = $1 AND NOT is_revoked`, id)
	if err != nil {
		return false, fmt.Errorf("revoke token %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Rotate revokes oldID and stores next in one transaction.
// It returns false when oldID was already revoked.
func (r *TokenRepo) Rotate(ctx context.Context, oldID int64, next *domain.Token) (bool, error) {
	rotated := false
	err := runTx(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `UPDATE tokens SET is_revoked = true WHERE id = $1 AND NOT is_revoked`, oldID)
		if err != nil {
			return fmt.Errorf("revoke token %d: %w", oldID, err)
		}
		if ct.RowsAffected() == 0 {
			return nil
		}
		rotated = true
		return insertToken(ctx, tx, next)
	})
	return rotated, err
}

// ResetPassword sets the user's password hash and revokes the reset token in one transaction.
func (r *TokenRepo) ResetPassword(ctx context.Context, tokenID, userID int64, hash string) error {
	return runTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET password = $2, updated_at = now() WHERE id = $1`, userID, hash,
		); err != nil {
			return fmt.Errorf("update password for user %d: %w", userID, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE tokens SET is_revoked = true WHERE id = $1`, tokenID); err != nil {
			return fmt.Errorf("revoke token %d: %w", tokenID, err)
		}
		return nil
	})
}

func insertToken(ctx context.Context, q querier, t *domain.Token) error {
	err := q.QueryRow(ctx, `
        INSERT INTO tokens (user_id, token, type, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, t.UserID, t.Token, string(t.Type), t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create token: %w", mapWriteErr(err))
	}
	return nil
}
