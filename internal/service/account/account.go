package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/mailer"
	"ecommerce-api/internal/service/user"
)

// Config holds token lifetimes and the public base URL used in mails.
type Config struct {
	RefreshTTL time.Duration
	ResetTTL   time.Duration
	BaseURL    string
}

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Name                 string
	Surname              string
	Email                string
	Password             string
	PasswordConfirmation string
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	Type         string
	Token        string
	RefreshToken string
	ExpiresIn    int64
}

// Service implements registration, sessions and password recovery.
type Service struct {
	users            userRepository
	tokens           tokenRepository
	issuer           AccessIssuer
	mail             Sender
	cfg              Config
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	newToken         func() string
}

// NewService creates and configures an account Service.
func NewService(users userRepository, tokens tokenRepository, issuer AccessIssuer, mail Sender, cfg Config, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		users:            users,
		tokens:           tokens,
		issuer:           issuer,
		mail:             mail,
		cfg:              cfg,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		newToken:         func() string { return uuid.NewString() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Register creates a client account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = user.NormalizeEmail(in.Email)

	v := apperr.NewValidationError()
	if in.Name == "" {
		v.Add("name", "is required")
	}
	if in.Surname == "" {
		v.Add("surname", "is required")
	}
	user.CheckEmail(v, in.Email)
	checkPassword(v, in.Password, in.PasswordConfirmation)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, taken := v.Fields["email"]; !taken {
		existing, err := s.users.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			v.Add("email", "has already been taken")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: in.Name, Surname: in.Surname, Email: in.Email, PasswordHash: hash}
	id, err := s.users.Create(ctx, u, []string{domain.RoleClient})
	if err != nil {
		return nil, err
	}

	created, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.ErrNotFound
	}
	s.logger.Info("user registered", logx.Int64("user_id", id))
	return created, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil {
		return TokenPair{}, apperr.ErrUnauthorized
	}
	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, apperr.ErrUnauthorized
	}

	refresh := s.refreshToken(u.ID)
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return TokenPair{}, err
	}
	return s.pair(u, refresh.Token)
}

// Refresh rotates a refresh token and issues a new pair.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.tokens.Find(ctx, strings.TrimSpace(raw), domain.TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if t == nil || !t.Active(s.now()) {
		return TokenPair{}, apperr.ErrUnauthorized
	}

	u, err := s.users.Get(ctx, t.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil {
		return TokenPair{}, apperr.ErrUnauthorized
	}

	next := s.refreshToken(u.ID)
	rotated, err := s.tokens.Rotate(ctx, t.ID, next)
	if err != nil {
		return TokenPair{}, err
	}
	if !rotated {
		return TokenPair{}, apperr.ErrUnauthorized
	}
	return s.pair(u, next.Token)
}

// Logout revokes a refresh token owned by userID.
func (s *Service) Logout(ctx context.Context, userID int64, raw string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.tokens.Find(ctx, strings.TrimSpace(raw), domain.TokenRefresh)
	if err != nil {
		return err
	}
	if t == nil || t.UserID != userID {
		return fmt.Errorf("refresh token: %w", apperr.ErrNotFound)
	}
	_, err = s.tokens.Revoke(ctx, t.ID)
	return err
}

// Forgot mails a password reset link. Unknown addresses are not reported to the caller.
func (s *Service) Forgot(ctx context.Context, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email = user.NormalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		s.logger.Debug("password reset for unknown email")
		return nil
	}

	t := &domain.Token{
		UserID:    u.ID,
		Token:     s.newToken(),
		Type:      domain.TokenPasswordReset,
		ExpiresAt: s.now().Add(s.cfg.ResetTTL),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return err
	}

	link := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/auth/remember/" + t.Token
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Password reset",
		Body: fmt.Sprintf("Hello %s,\n\nuse the link below to reset your password. It expires at %s.\n\n%s\n",
			u.Name, t.ExpiresAt.Format(time.RFC1123), link),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("send password reset mail failed", logx.Int64("user_id", u.ID), logx.Err(err))
	}
	return nil
}

// Remember returns the email bound to an active password reset token.
func (s *Service) Remember(ctx context.Context, raw string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, u, err := s.resetToken(ctx, raw)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

// Reset sets a new password and revokes the reset token.
func (s *Service) Reset(ctx context.Context, raw, password, confirmation string) error {
	v := apperr.NewValidationError()
	if strings.TrimSpace(raw) == "" {
		v.Add("token", "is required")
	}
	checkPassword(v, password, confirmation)
	if err := v.OrNil(); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, u, err := s.resetToken(ctx, raw)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.tokens.ResetPassword(ctx, t.ID, u.ID, hash)
}

func (s *Service) resetToken(ctx context.Context, raw string) (*domain.Token, *domain.User, error) {
	t, err := s.tokens.Find(ctx, strings.TrimSpace(raw), domain.TokenPasswordReset)
	if err != nil {
		return nil, nil, err
	}
	if t == nil || !t.Active(s.now()) {
		return nil, nil, fmt.Errorf("reset token: %w", apperr.ErrNotFound)
	}
	u, err := s.users.Get(ctx, t.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, fmt.Errorf("reset token: %w", apperr.ErrNotFound)
	}
	return t, u, nil
}

func (s *Service) refreshToken(userID int64) *domain.Token {
	return &domain.Token{
		UserID:    userID,
		Token:     s.newToken(),
		Type:      domain.TokenRefresh,
		ExpiresAt: s.now().Add(s.cfg.RefreshTTL),
	}
}

func (s *Service) pair(u *domain.User, refresh string) (TokenPair, error) {
	access, exp, err := s.issuer.Issue(u.ID, u.RoleSlugs())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Type:         "bearer",
		Token:        access,
		RefreshToken: refresh,
		ExpiresIn:    int64(exp.Sub(s.now()).Seconds()),
	}, nil
}

func checkPassword(v *apperr.ValidationError, password, confirmation string) {
	if password == "" {
		v.Add("password", "is required")
		return
	}
	if password != confirmation {
		v.Add("password_confirmation", "does not match password")
	}
}
