package ratelimit

import "time"

// Limiter decides whether the request bucketed under key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Clock is injected so refill and sweeping can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// NopLimiter lets everything through. Used when rate limiting is disabled.
type NopLimiter struct{}

func (NopLimiter) Allow(string) bool { return true }

// NewNopLimiter returns a Limiter that never blocks.
func NewNopLimiter() Limiter { return NopLimiter{} }
