package user

import (
	"context"

	"ecommerce-api/internal/domain"
)

type userRepository interface {
	List(ctx context.Context, f domain.UserFilter, p domain.PageRequest) ([]domain.User, int64, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User, roles []string) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialUserUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
