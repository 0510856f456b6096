package kafka

import (
	"time"

	"ecommerce-api/internal/service/order"
)

// OrderEventDTO is the JSON value published for order.Event
type OrderEventDTO struct {
	EventType string    `json:"event_type"`
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// FromDomain converts order.Event to OrderEventDTO
func FromDomain(e order.Event) OrderEventDTO {
	return OrderEventDTO{
		EventType: e.Type,
		OrderID:   e.OrderID,
		UserID:    e.UserID,
		Status:    string(e.Status),
		Total:     e.Total.StringFixed(2),
		Timestamp: e.OccurredAt.UTC(),
	}
}
