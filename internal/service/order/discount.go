package order

import (
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CanApplyDiscount reports whether coupon c is usable for order o at now:
// inside its validity window, not exhausted, and allowed by its restrictions.
func CanApplyDiscount(c *domain.Coupon, o *domain.Order, now time.Time) bool {
	if c == nil || o == nil {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.Quantity <= 0 {
		return false
	}

	byUser := len(c.UserIDs) > 0
	byProduct := len(c.ProductIDs) > 0
	switch {
	case byUser && byProduct:
		return c.AllowsUser(o.UserID) && hasRestrictedItem(c, o)
	case byProduct:
		return hasRestrictedItem(c, o)
	case byUser:
		return c.AllowsUser(o.UserID)
	default:
		return true
	}
}

// CanApplyToOrder applies the recursive rule: a coupon may join an order
// without discounts, or any order when it is recursive.
func CanApplyToOrder(c *domain.Coupon, o *domain.Order) bool {
	return len(o.Discounts) == 0 || c.Recursive
}

// CalculateDiscount returns the amount coupon c takes off order o,
// rounded to cents and never more than the amount it applies to.
func CalculateDiscount(c *domain.Coupon, o *domain.Order) decimal.Decimal {
	var amount, base decimal.Decimal

	if len(c.ProductIDs) > 0 {
		for _, it := range o.Items {
			if !c.AllowsProduct(it.ProductID) {
				continue
			}
			base = base.Add(it.Subtotal)
			switch c.Type {
			case domain.CouponPercent:
				amount = amount.Add(it.Subtotal.Mul(c.Discount).Div(hundred))
			case domain.CouponCurrency:
				amount = amount.Add(c.Discount.Mul(decimal.NewFromInt(int64(it.Quantity))))
			case domain.CouponFree:
				amount = amount.Add(it.Subtotal)
			}
		}
	} else {
		base = o.Subtotal()
		switch c.Type {
		case domain.CouponPercent:
			amount = base.Mul(c.Discount).Div(hundred)
		case domain.CouponCurrency:
			amount = c.Discount
		case domain.CouponFree:
			amount = base
		}
	}

	amount = amount.Round(2)
	if amount.GreaterThan(base) {
		amount = base
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

func hasRestrictedItem(c *domain.Coupon, o *domain.Order) bool {
	for _, it := range o.Items {
		if c.AllowsProduct(it.ProductID) {
			return true
		}
	}
	return false
}

func decimalQty(q int) decimal.Decimal { return decimal.NewFromInt(int64(q)) }
