package handlers

import (
	"context"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/service/account"
	"ecommerce-api/internal/service/image"
	"ecommerce-api/internal/service/order"
	"ecommerce-api/internal/service/user"
)

// URLFunc turns a stored object path into its public URL.
type URLFunc func(path string) string

type categoryUsecase interface {
	List(ctx context.Context, f domain.CategoryFilter, p domain.PageRequest) (domain.Page[domain.Category], error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type productUsecase interface {
	List(ctx context.Context, f domain.ProductFilter, p domain.PageRequest) (domain.Page[domain.Product], error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdatePartial(ctx context.Context, u domain.PartialProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type imageUsecase interface {
	List(ctx context.Context, p domain.PageRequest) (domain.Page[domain.Image], error)
	Get(ctx context.Context, id int64) (*domain.Image, error)
	Upload(ctx context.Context, files []image.Upload) (image.Result, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Image, error)
	Delete(ctx context.Context, id int64) error
}

type userUsecase interface {
	List(ctx context.Context, f domain.UserFilter, p domain.PageRequest) (domain.Page[domain.User], error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, in user.CreateInput) (*domain.User, error)
	UpdatePartial(ctx context.Context, in user.UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type accountUsecase interface {
	Register(ctx context.Context, in account.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (account.TokenPair, error)
	Refresh(ctx context.Context, raw string) (account.TokenPair, error)
	Logout(ctx context.Context, userID int64, raw string) error
	Forgot(ctx context.Context, email string) error
	Remember(ctx context.Context, raw string) (string, error)
	Reset(ctx context.Context, raw, password, confirmation string) error
}

type couponUsecase interface {
	List(ctx context.Context, f domain.CouponFilter, p domain.PageRequest) (domain.Page[domain.Coupon], error)
	Get(ctx context.Context, id int64) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error)
	Update(ctx context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error)
	Delete(ctx context.Context, id int64) error
}

type orderUsecase interface {
	List(ctx context.Context, f domain.OrderFilter, p domain.PageRequest) (domain.Page[domain.Order], error)
	Get(ctx context.Context, id int64, owner *int64) (*domain.Order, error)
	Create(ctx context.Context, in order.CreateInput, channel string) (*domain.Order, error)
	Update(ctx context.Context, u domain.PartialOrderUpdate, owner *int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	ApplyDiscount(ctx context.Context, orderID int64, code string, owner *int64) (*domain.Order, domain.DiscountInfo, error)
	RemoveDiscount(ctx context.Context, orderID, discountID int64, owner *int64) error
}
