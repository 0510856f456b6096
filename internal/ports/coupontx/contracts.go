package coupontx

import (
	"context"

	"ecommerce-api/internal/domain"
)

// Repository is the set of coupon operations available inside a transaction.
type Repository interface {
	GetCouponForUpdate(ctx context.Context, id int64) (*domain.Coupon, error)
	CreateCoupon(ctx context.Context, c *domain.Coupon) error
	UpdateCoupon(ctx context.Context, c *domain.Coupon) error
	SyncCouponUsers(ctx context.Context, couponID int64, userIDs []int64) error
	SyncCouponProducts(ctx context.Context, couponID int64, productIDs []int64) error
	DetachCouponOrders(ctx context.Context, couponID int64) error
	DeleteCoupon(ctx context.Context, id int64) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
