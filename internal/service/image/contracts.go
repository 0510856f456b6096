package image

import (
	"context"
	"io"

	"ecommerce-api/internal/domain"
)

type imageRepository interface {
	List(ctx context.Context, p domain.PageRequest) ([]domain.Image, int64, error)
	Get(ctx context.Context, id int64) (*domain.Image, error)
	Create(ctx context.Context, img *domain.Image) error
	Rename(ctx context.Context, id int64, name string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ObjectStore is the subset of storage.Storage used by the service.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Counter records upload outcomes.
type Counter interface {
	ImageUploaded(result string)
}
