package category

import (
	"context"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
)

// Service coordinates category business logic and orchestrates repository calls.
type Service struct {
	repo             categoryRepository
	policy           *bluemonday.Policy
	operationTimeout time.Duration
}

// NewService creates and configures a category Service.
func NewService(r categoryRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, policy: bluemonday.UGCPolicy(), operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of categories.
func (s *Service) List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) (domain.Page[domain.Category], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get retrieves a category by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// Create validates and persists a category, then returns the stored row.
func (s *Service) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if c == nil {
		return nil, apperr.ErrInvalid
	}
	c.Title = strings.TrimSpace(c.Title)
	c.Description = s.policy.Sanitize(c.Description)

	v := apperr.NewValidationError()
	if c.Title == "" {
		v.Add("title", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// UpdatePartial merges the provided fields and returns the updated category.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.Category, error) {
	if u.ID <= 0 {
		return nil, apperr.ErrInvalid
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			v := apperr.NewValidationError()
			v.Add("title", "must not be empty")
			return nil, v
		}
		u.Title = &t
	}
	if u.Description != nil {
		d := s.policy.Sanitize(*u.Description)
		u.Description = &d
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
	return s.reload(ctx, u.ID)
}

// Delete removes a category.
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

func (s *Service) reload(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}
