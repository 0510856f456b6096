package product

import (
	"context"

	"ecommerce-api/internal/domain"
)

// productRepository defines storage operations required by the business layer.
type productRepository interface {
	List(ctx context.Context, f domain.ProductFilter, p domain.PageRequest) ([]domain.Product, int64, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialProductUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
