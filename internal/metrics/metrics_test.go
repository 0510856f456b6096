package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestShop_Counters(t *testing.T) {
	s := NewShop()

	s.OrderCreated("client")
	s.OrderCreated("client")
	s.CouponApplied("rejected")
	s.ImageUploaded("ok")

	require.InDelta(t, 2, testutil.ToFloat64(s.OrdersCreated.WithLabelValues("client")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(s.CouponApplications.WithLabelValues("rejected")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(s.ImagesUploaded.WithLabelValues("ok")), 0)
	require.Len(t, s.Collectors(), 3)

	var nilShop *Shop
	nilShop.OrderCreated("admin")
}

func TestNewRateLimitExceededTotal(t *testing.T) {
	c := NewRateLimitExceededTotal()
	c.Inc()
	require.InDelta(t, 1, testutil.ToFloat64(c), 0)
}

func TestHTTP_Observe(t *testing.T) {
	h := NewHTTP()

	h.Observe("GET", "/v1/products/{id}", 200, 0.02)
	h.Observe("GET", "/v1/products/{id}", 200, 0.03)
	h.Observe("GET", "/v1/products/{id}", 404, 0.01)

	require.InDelta(t, 2, testutil.ToFloat64(h.Requests.WithLabelValues("GET", "/v1/products/{id}", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(h.Requests.WithLabelValues("GET", "/v1/products/{id}", "404")), 0)

	obs, err := h.Duration.GetMetricWithLabelValues("GET", "/v1/products/{id}", "200")
	require.NoError(t, err)
	m := &dto.Metric{}
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	require.EqualValues(t, 2, m.GetHistogram().GetSampleCount())
	require.InDelta(t, 0.05, m.GetHistogram().GetSampleSum(), 1e-9)

	var nilHTTP *HTTP
	nilHTTP.Observe("GET", "/", 200, 1)
}
