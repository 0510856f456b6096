package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"ecommerce-api/internal/config"
	"ecommerce-api/internal/http/middleware/ratelimit"
	"ecommerce-api/internal/logx"
)

func newLimiter(rl config.RateLimit, clock ratelimit.Clock, rps float64, burst int) ratelimit.Limiter {
	if !rl.Enabled {
		return ratelimit.NewNopLimiter()
	}
	return ratelimit.NewTokenBucketLimiter(clock, ratelimit.Config{
		Rate:       rps,
		Burst:      burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

type rateLimitIn struct {
	dig.In
	Config  *config.Config
	Clock   ratelimit.Clock
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
}

type rateLimitOut struct {
	dig.Out
	API  *ratelimit.Middleware `name:"api_limiter"`
	Auth *ratelimit.Middleware `name:"auth_limiter"`
}

// newRateLimitMiddlewares builds the general API limiter and the stricter one for /v1/auth.
func newRateLimitMiddlewares(in rateLimitIn) rateLimitOut {
	rl := in.Config.RateLimit
	return rateLimitOut{
		API:  ratelimit.New(in.Logger, in.Counter, newLimiter(rl, in.Clock, rl.RPS, rl.Burst)),
		Auth: ratelimit.New(in.Logger.With(logx.String("limiter", "auth")), in.Counter, newLimiter(rl, in.Clock, rl.AuthRPS, rl.AuthBurst), ratelimit.WithScope("auth")),
	}
}
