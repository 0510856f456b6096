package account

import (
	"context"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/mailer"
)

type userRepository interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User, roles []string) (int64, error)
}

type tokenRepository interface {
	Create(ctx context.Context, t *domain.Token) error
	Find(ctx context.Context, value string, typ domain.TokenType) (*domain.Token, error)
	Revoke(ctx context.Context, id int64) (bool, error)
	Rotate(ctx context.Context, oldID int64, next *domain.Token) (bool, error)
	ResetPassword(ctx context.Context, tokenID, userID int64, hash string) error
}

// AccessIssuer signs short-lived access tokens.
type AccessIssuer interface {
	Issue(userID int64, roles []string) (string, time.Time, error)
}

// Sender delivers mail.
type Sender interface {
	Send(ctx context.Context, m mailer.Message) error
}
