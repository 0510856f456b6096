package category

import (
	"context"

	"ecommerce-api/internal/domain"
)

// categoryRepository defines storage operations required by the business layer.
type categoryRepository interface {
	List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) ([]domain.Category, int64, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
