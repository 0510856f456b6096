package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"ecommerce-api/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	Shop                   *metrics.Shop
	HTTP                   *metrics.HTTP
}

// provideMetrics registers collectors on the default registry. Collectors that are
// already registered (tests, repeated builds) are reused.
func provideMetrics() (metricsOut, error) {
	var (
		out metricsOut
		err error
	)

	if out.RateLimitExceededTotal, err = register(metrics.NewRateLimitExceededTotal()); err != nil {
		return metricsOut{}, fmt.Errorf("register rate_limit_exceeded_total: %w", err)
	}

	out.Shop = metrics.NewShop()
	if out.Shop.OrdersCreated, err = register(out.Shop.OrdersCreated); err != nil {
		return metricsOut{}, fmt.Errorf("register orders_created_total: %w", err)
	}
	if out.Shop.CouponApplications, err = register(out.Shop.CouponApplications); err != nil {
		return metricsOut{}, fmt.Errorf("register coupon_applications_total: %w", err)
	}
	if out.Shop.ImagesUploaded, err = register(out.Shop.ImagesUploaded); err != nil {
		return metricsOut{}, fmt.Errorf("register images_uploaded_total: %w", err)
	}

	out.HTTP = metrics.NewHTTP()
	if out.HTTP.Requests, err = register(out.HTTP.Requests); err != nil {
		return metricsOut{}, fmt.Errorf("register http_requests_total: %w", err)
	}
	if out.HTTP.Duration, err = register(out.HTTP.Duration); err != nil {
		return metricsOut{}, fmt.Errorf("register http_request_duration_seconds: %w", err)
	}

	return out, nil
}

// register returns the already registered collector of the same type when there is one.
func register[T prometheus.Collector](c T) (T, error) {
	err := prometheus.DefaultRegisterer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, err
}
