package handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type pageDTO[T any] struct {
	Total    int64 `json:"total"`
	PerPage  int   `json:"perPage"`
	Page     int   `json:"page"`
	LastPage int   `json:"lastPage"`
	Data     []T   `json:"data"`
}

type imageDTO struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	OriginalName string    `json:"original_name"`
	Extension    string    `json:"extension"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type uploadErrorDTO struct {
	ClientName string `json:"client_name"`
	Message    string `json:"message"`
}

type uploadResponse struct {
	Successes []imageDTO       `json:"successes"`
	Errors    []uploadErrorDTO `json:"errors"`
}

type renameImageRequest struct {
	OriginalName string `json:"original_name"`
}

type categoryDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageID     *int64    `json:"image_id"`
	Image       *imageDTO `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageID     *int64 `json:"image_id"`
}

type updateCategoryRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageID     *int64  `json:"image_id,omitempty"`
}

type productDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageID     *int64    `json:"image_id"`
	Image       *imageDTO `json:"image,omitempty"`
	Categories  []int64   `json:"categories"`
	Images      []int64   `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageID     *int64          `json:"image_id"`
	Categories  []int64         `json:"categories"`
	Images      []int64         `json:"images"`
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageID     *int64           `json:"image_id,omitempty"`
	Categories  []int64          `json:"categories,omitempty"`
	Images      []int64          `json:"images,omitempty"`
}

type userDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	ImageID   *int64    `json:"image_id"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createUserRequest struct {
	Name     string   `json:"name"`
	Surname  string   `json:"surname"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	ImageID  *int64   `json:"image_id"`
	Roles    []string `json:"roles"`
}

type updateUserRequest struct {
	Name     *string  `json:"name,omitempty"`
	Surname  *string  `json:"surname,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Password *string  `json:"password,omitempty"`
	ImageID  *int64   `json:"image_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type registerRequest struct {
	Name                 string `json:"name"`
	Surname              string `json:"surname"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type tokenResponse struct {
	Type         string `json:"type"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type couponDTO struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Discount   string     `json:"discount"`
	ValidFrom  time.Time  `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Quantity   int        `json:"quantity"`
	Type       string     `json:"type"`
	CanUseFor  string     `json:"can_use_for"`
	Recursive  bool       `json:"recursive"`
	Users      []int64    `json:"users"`
	Products   []int64    `json:"products"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type createCouponRequest struct {
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	ValidFrom  *time.Time      `json:"valid_from"`
	ValidUntil *time.Time      `json:"valid_until"`
	Quantity   int             `json:"quantity"`
	Type       string          `json:"type"`
	Recursive  bool            `json:"recursive"`
	Users      []int64         `json:"users"`
	Products   []int64         `json:"products"`
}

type updateCouponRequest struct {
	Code       *string          `json:"code,omitempty"`
	Discount   *decimal.Decimal `json:"discount,omitempty"`
	ValidFrom  *time.Time       `json:"valid_from,omitempty"`
	ValidUntil optionalTime     `json:"valid_until"`
	Quantity   *int             `json:"quantity,omitempty"`
	Type       *string          `json:"type,omitempty"`
	Recursive  *bool            `json:"recursive,omitempty"`
	Users      []int64          `json:"users,omitempty"`
	Products   []int64          `json:"products,omitempty"`
}

// optionalTime tells an absent field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type orderItemDTO struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type discountDTO struct {
	ID       int64  `json:"id"`
	CouponID int64  `json:"coupon_id"`
	OrderID  int64  `json:"order_id"`
	Code     string `json:"code"`
	Discount string `json:"discount"`
}

type orderCouponDTO struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

type orderDTO struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Status    string           `json:"status"`
	Subtotal  string           `json:"subtotal"`
	Discount  string           `json:"discount"`
	Total     string           `json:"total"`
	QtyItems  int              `json:"qty_items"`
	Items     []orderItemDTO   `json:"items"`
	Coupons   []orderCouponDTO `json:"coupons"`
	Discounts []discountDTO    `json:"discounts"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type orderItemRequest struct {
	ID        *int64 `json:"id,omitempty"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	UserID int64              `json:"user_id"`
	Status string             `json:"status"`
	Items  []orderItemRequest `json:"items"`
}

type updateOrderRequest struct {
	UserID *int64             `json:"user_id,omitempty"`
	Status *string            `json:"status,omitempty"`
	Items  []orderItemRequest `json:"items,omitempty"`
}

type applyDiscountRequest struct {
	Code string `json:"code"`
}

type removeDiscountRequest struct {
	DiscountID int64 `json:"discount_id"`
}

type discountInfoDTO struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type applyDiscountResponse struct {
	Order orderDTO        `json:"order"`
	Info  discountInfoDTO `json:"info"`
}
