package product

import (
	"context"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
)

// Service coordinates product business logic.
type Service struct {
	repo             productRepository
	policy           *bluemonday.Policy
	operationTimeout time.Duration
}

// NewService creates and configures a product Service.
func NewService(r productRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, policy: bluemonday.UGCPolicy(), operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of products.
func (s *Service) List(ctx context.Context, f domain.ProductFilter, p domain.PageRequest) (domain.Page[domain.Product], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get retrieves a product by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.get(ctx, id)
}

// Create validates and persists a product with its relations.
func (s *Service) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p == nil {
		return nil, apperr.ErrInvalid
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Description = s.policy.Sanitize(p.Description)

	v := apperr.NewValidationError()
	if p.Name == "" {
		v.Add("name", "is required")
	}
	checkPrice(v, p.Price)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// UpdatePartial merges the provided fields, re-syncs relation lists when present
// and returns the updated product.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialProductUpdate) (*domain.Product, error) {
	if u.ID <= 0 {
		return nil, apperr.ErrInvalid
	}
	v := apperr.NewValidationError()
	if u.Name != nil {
		n := strings.TrimSpace(*u.Name)
		if n == "" {
			v.Add("name", "must not be empty")
		}
		u.Name = &n
	}
	if u.Price != nil {
		checkPrice(v, *u.Price)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
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
	return s.get(ctx, u.ID)
}

// Delete removes a product.
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

func (s *Service) get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func checkPrice(v *apperr.ValidationError, price decimal.Decimal) {
	if price.IsNegative() {
		v.Add("price", "must be greater than or equal to 0")
	}
}
