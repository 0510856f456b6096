package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// CouponType tells how Coupon.Discount is interpreted.
	CouponType string
	// CouponScope (can_use_for) tells which restrictions a coupon carries.
	CouponScope string
)

// List of coupon types
const (
	CouponFree     CouponType = "free"
	CouponPercent  CouponType = "percent"
	CouponCurrency CouponType = "currency"
)

// List of coupon scopes
const (
	ScopeProduct       CouponScope = "product"
	ScopeClient        CouponScope = "client"
	ScopeProductClient CouponScope = "product_client"
	ScopeAll           CouponScope = "all"
)

// Valid checks if the CouponType is valid
func (t CouponType) Valid() bool {
	switch t {
	case CouponFree, CouponPercent, CouponCurrency:
		return true
	}
	return false
}

// ScopeFor derives can_use_for from the restriction lists.
func ScopeFor(userIDs, productIDs []int64) CouponScope {
	switch {
	case len(userIDs) > 0 && len(productIDs) > 0:
		return ScopeProductClient
	case len(productIDs) > 0:
		return ScopeProduct
	case len(userIDs) > 0:
		return ScopeClient
	default:
		return ScopeAll
	}
}

// Coupon is a discount code with optional user and product restrictions.
type Coupon struct {
	ID         int64
	Code       string
	Discount   decimal.Decimal
	ValidFrom  time.Time
	ValidUntil *time.Time
	Quantity   int
	Type       CouponType
	CanUseFor  CouponScope
	Recursive  bool
	UserIDs    []int64
	ProductIDs []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AllowsUser reports whether userID is in the user restriction list.
func (c *Coupon) AllowsUser(userID int64) bool {
	return containsID(c.UserIDs, userID)
}

// AllowsProduct reports whether productID is in the product restriction list.
func (c *Coupon) AllowsProduct(productID int64) bool {
	return containsID(c.ProductIDs, productID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CouponFilter narrows coupon listings by exact, case-insensitive code.
type CouponFilter struct {
	Code string
}

// PartialCouponUpdate carries optional fields to update a coupon.
// Nil UserIDs/ProductIDs leave restrictions untouched.
// ClearValidUntil removes the expiry and wins over ValidUntil.
type PartialCouponUpdate struct {
	ID              int64
	Code            *string
	Discount        *decimal.Decimal
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	ClearValidUntil bool
	Quantity        *int
	Type       *CouponType
	Recursive  *bool
	UserIDs    []int64
	ProductIDs []int64
}

// Discount is a coupon applied to an order (a coupon_order row).
type Discount struct {
	ID       int64
	CouponID int64
	OrderID  int64
	Code     string
	Amount   decimal.Decimal
}

// DiscountInfo reports the outcome of applying a coupon.
type DiscountInfo struct {
	Message string
	Success bool
}
