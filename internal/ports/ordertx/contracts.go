package ordertx

import (
	"context"

	"github.com/shopspring/decimal"

	"ecommerce-api/internal/domain"
)

// Repository is the set of order operations available inside a transaction.
type Repository interface {
	// GetOrderForUpdate locks the order row and loads its items and discounts.
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, o *domain.Order) error
	UpdateOrder(ctx context.Context, o *domain.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	ProductPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
	// DeleteItemsExcept removes the order's items whose id is not in keep.
	DeleteItemsExcept(ctx context.Context, orderID int64, keep []int64) error
	InsertItem(ctx context.Context, it *domain.OrderItem) error
	UpdateItem(ctx context.Context, it *domain.OrderItem) error

	// GetCouponByCodeForUpdate locks the coupon row and loads its restrictions.
	GetCouponByCodeForUpdate(ctx context.Context, code string) (*domain.Coupon, error)
	InsertDiscount(ctx context.Context, d *domain.Discount) error
	DeleteDiscount(ctx context.Context, id int64) error
	// AdjustCouponQuantity adds delta to the coupon quantity, refusing to go below zero.
	AdjustCouponQuantity(ctx context.Context, couponID int64, delta int) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
