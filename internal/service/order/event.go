package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-api/internal/domain"
)

// List of order event types
const (
	EventCreated = "order.created"
	EventUpdated = "order.updated"
	EventDeleted = "order.deleted"
)

// Event is a single order change published after commit.
type Event struct {
	Type       string
	OrderID    int64
	UserID     int64
	Status     domain.OrderStatus
	Total      decimal.Decimal
	OccurredAt time.Time
}

func newEvent(typ string, o *domain.Order, at time.Time) Event {
	return Event{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total(),
		OccurredAt: at,
	}
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

type nopRecorder struct{}

func (nopRecorder) OrderCreated(string)  {}
func (nopRecorder) CouponApplied(string) {}
