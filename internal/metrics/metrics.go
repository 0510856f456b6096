package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// Shop groups business counters.
type Shop struct {
	OrdersCreated      *prometheus.CounterVec
	CouponApplications *prometheus.CounterVec
	ImagesUploaded     *prometheus.CounterVec
}

// NewShop creates the business counters. They are not registered.
func NewShop() *Shop {
	return &Shop{
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of created orders by channel (admin, client)",
		}, []string{"channel"}),
		CouponApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coupon_applications_total",
			Help: "Total number of coupon application attempts by result",
		}, []string{"result"}),
		ImagesUploaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "images_uploaded_total",
			Help: "Total number of uploaded image files by result",
		}, []string{"result"}),
	}
}

// Collectors returns every collector for registration.
func (s *Shop) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.OrdersCreated, s.CouponApplications, s.ImagesUploaded}
}

// OrderCreated increments orders_created_total.
func (s *Shop) OrderCreated(channel string) {
	if s == nil {
		return
	}
	s.OrdersCreated.WithLabelValues(channel).Inc()
}

// CouponApplied increments coupon_applications_total.
func (s *Shop) CouponApplied(result string) {
	if s == nil {
		return
	}
	s.CouponApplications.WithLabelValues(result).Inc()
}

// ImageUploaded increments images_uploaded_total.
func (s *Shop) ImageUploaded(result string) {
	if s == nil {
		return
	}
	s.ImagesUploaded.WithLabelValues(result).Inc()
}

// HTTP holds the request counters observed by the access middleware.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates request metrics labelled by method, route pattern and status.
func NewHTTP() *HTTP {
	labels := []string{"method", "path", "status"}
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Observe records one served request. Safe on a nil receiver.
func (h *HTTP) Observe(method, path string, status int, seconds float64) {
	if h == nil {
		return
	}
	code := strconv.Itoa(status)
	h.Requests.WithLabelValues(method, path, code).Inc()
	h.Duration.WithLabelValues(method, path, code).Observe(seconds)
}
