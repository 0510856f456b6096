package ratelimit

import (
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // idle buckets older than TTL are dropped (0 disables)
	MaxBuckets int           // 0 means unlimited
}

// TokenBucketLimiter is a per-key token bucket limiter.
//
// When MaxBuckets is reached, idle buckets are swept first; if the map is still full
// new keys are denied until space frees up.
type TokenBucketLimiter struct {
	cfg       Config
	clock     Clock
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucketLimiter creates a limiter with cfg and the injected clock.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token from key's bucket.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sweepDue(now) {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		if l.full() {
			l.sweep(now)
			if l.full() {
				return false
			}
		}
		b = &bucket{tokens: float64(l.cfg.Burst), last: now}
		l.buckets[key] = b
	}

	if dt := now.Sub(b.last); dt > 0 {
		b.tokens = min(b.tokens+dt.Seconds()*l.cfg.Rate, float64(l.cfg.Burst))
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len returns the number of live buckets.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *TokenBucketLimiter) full() bool {
	return l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets
}

// sweepDue reports whether the periodic sweep should run: every TTL/2, at least once a minute apart.
func (l *TokenBucketLimiter) sweepDue(now time.Time) bool {
	if l.cfg.TTL <= 0 {
		return false
	}
	interval := max(l.cfg.TTL/2, time.Minute)
	return l.lastSweep.IsZero() || now.Sub(l.lastSweep) >= interval
}

func (l *TokenBucketLimiter) sweep(now time.Time) {
	l.lastSweep = now
	if l.cfg.TTL <= 0 {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.last) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
