package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

// List of possible order statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
	OrderFinished  OrderStatus = "finished"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderPaid, OrderShipped, OrderCancelled, OrderFinished,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is a customer purchase.
type Order struct {
	ID        int64
	UserID    int64
	Status    OrderStatus
	Items     []OrderItem
	Discounts []Discount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a single order line.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Subtotal  decimal.Decimal
}

// Subtotal is the sum of item subtotals.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

// DiscountTotal is the sum of applied discounts.
func (o *Order) DiscountTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range o.Discounts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// Total is the subtotal minus discounts, never below zero.
func (o *Order) Total() decimal.Decimal {
	t := o.Subtotal().Sub(o.DiscountTotal())
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// QtyItems is the number of order lines.
func (o *Order) QtyItems() int { return len(o.Items) }

// HasCoupon reports whether couponID is already applied.
func (o *Order) HasCoupon(couponID int64) bool {
	for _, d := range o.Discounts {
		if d.CouponID == couponID {
			return true
		}
	}
	return false
}

// ItemInput is a submitted order line. ID is set when the client refers to an existing item.
type ItemInput struct {
	ID        *int64
	ProductID int64
	Quantity  int
}

// OrderFilter narrows order listings.
//
// UserID scopes listings to one owner. Number is a substring match on the order id.
type OrderFilter struct {
	UserID *int64
	Status OrderStatus
	Number string
}

// PartialOrderUpdate carries optional fields to update an order.
// Nil Items leaves the order lines untouched.
type PartialOrderUpdate struct {
	ID     int64
	UserID *int64
	Status *OrderStatus
	Items  []ItemInput
}
