package ratelimit

import (
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/logx"
)

const tooManyRequestsBody = `{"error":"too many requests"}`

// Middleware rejects requests with 429 once the caller's bucket is empty.
type Middleware struct {
	logger  logx.Logger
	denied  prometheus.Counter
	limiter Limiter
	scope   string
}

// Option tunes a Middleware.
type Option func(*Middleware)

// WithScope prefixes bucket keys so that two middlewares sharing a limiter
// never drain each other's buckets.
func WithScope(scope string) Option {
	return func(m *Middleware) { m.scope = scope }
}

// New wires a limiter into HTTP. denied may be nil.
func New(logger logx.Logger, denied prometheus.Counter, limiter Limiter, opts ...Option) *Middleware {
	if logger == nil {
		logger = logx.Nop()
	}
	if limiter == nil {
		limiter = NopLimiter{}
	}
	m := &Middleware{logger: logger, denied: denied, limiter: limiter}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler returns chi-style middleware.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := m.key(r)
			if m.limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}
			m.reject(w, r, key)
		})
	}
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, key string) {
	if m.denied != nil {
		m.denied.Inc()
	}
	m.logger.Warn("rate limit exceeded",
		logx.String("key", key),
		logx.String("method", r.Method),
		logx.String("path", r.URL.Path),
	)

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	if _, err := w.Write([]byte(tooManyRequestsBody)); err != nil {
		// client went away
		m.logger.Debug("rate limit response write failed", logx.String("key", key), logx.Err(err))
	}
}

// key buckets authenticated callers by user id and everyone else by IP.
func (m *Middleware) key(r *http.Request) string {
	var k string
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		k = "user:" + strconv.FormatInt(id.UserID, 10)
	} else {
		k = "ip:" + clientIP(r)
	}
	if m.scope != "" {
		return m.scope + "/" + k
	}
	return k
}

// clientIP expects chi's RealIP to have already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
