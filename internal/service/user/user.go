package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/domain"
)

// CreateInput is a new account submitted by an administrator.
type CreateInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
	ImageID  *int64
	Roles    []string
}

// UpdateInput carries optional fields. A non-nil Password is re-hashed.
type UpdateInput struct {
	ID       int64
	Name     *string
	Surname  *string
	Email    *string
	Password *string
	ImageID  *int64
	Roles    []string
}

// Service coordinates user business logic.
type Service struct {
	repo             userRepository
	operationTimeout time.Duration
	hash             func(string) (string, error)
}

// NewService creates and configures a user Service.
func NewService(r userRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, operationTimeout: timeout, hash: auth.HashPassword}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, f domain.UserFilter, p domain.PageRequest) (domain.Page[domain.User], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reload(ctx, id)
}

// Create validates in, hashes the password and stores the user with its roles.
// Without roles the user becomes a client.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = NormalizeEmail(in.Email)

	v := apperr.NewValidationError()
	if in.Name == "" {
		v.Add("name", "is required")
	}
	if in.Surname == "" {
		v.Add("surname", "is required")
	}
	CheckEmail(v, in.Email)
	if in.Password == "" {
		v.Add("password", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if len(in.Roles) == 0 {
		in.Roles = []string{domain.RoleClient}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u := &domain.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		PasswordHash: hash,
		ImageID:      in.ImageID,
	}
	id, err := s.repo.Create(ctx, u, in.Roles)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdatePartial merges the provided fields and returns the updated user.
func (s *Service) UpdatePartial(ctx context.Context, in UpdateInput) (*domain.User, error) {
	u := domain.PartialUserUpdate{ID: in.ID, ImageID: in.ImageID, Roles: in.Roles}

	v := apperr.NewValidationError()
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			v.Add("name", "must not be empty")
		}
		u.Name = &n
	}
	if in.Surname != nil {
		n := strings.TrimSpace(*in.Surname)
		if n == "" {
			v.Add("surname", "must not be empty")
		}
		u.Surname = &n
	}
	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		CheckEmail(v, e)
		u.Email = &e
	}
	if in.Password != nil && *in.Password == "" {
		v.Add("password", "must not be empty")
	}
	if in.Roles != nil && len(in.Roles) == 0 {
		v.Add("roles", "must not be empty")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.reload(ctx, in.ID)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail records a validation failure for a missing or malformed address.
func CheckEmail(v *apperr.ValidationError, email string) {
	if email == "" {
		v.Add("email", "is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.Add("email", "must be a valid email address")
	}
}
