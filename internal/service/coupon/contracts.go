package coupon

import (
	"context"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/ports/coupontx"
)

type couponRepository interface {
	coupontx.Runner
	List(ctx context.Context, f domain.CouponFilter, p domain.PageRequest) ([]domain.Coupon, int64, error)
	Get(ctx context.Context, id int64) (*domain.Coupon, error)
}
