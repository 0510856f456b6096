//go:generate mockgen -source=contracts.go -destination=order_mocks_test.go -package=order

package order

import (
	"context"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/ports/ordertx"
)

type orderRepository interface {
	ordertx.Runner
	List(ctx context.Context, f domain.OrderFilter, p domain.PageRequest) ([]domain.Order, int64, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
}

// EventPublisher delivers order events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// Recorder counts order and coupon outcomes.
type Recorder interface {
	OrderCreated(channel string)
	CouponApplied(result string)
}
