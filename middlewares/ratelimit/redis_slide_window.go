package ratelimit

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foyerweb/foyer/internal/ratelimit"
)

// InitRedisSlidingWindowLimiter builds a limiter allowing rate requests per
// interval, with the window bookkeeping kept in redis so the budget is
// shared across processes.
func InitRedisSlidingWindowLimiter(cmd redis.Cmdable, interval time.Duration, rate int) ratelimit.Limiter {
	return &ratelimit.RedisSlidingWindowLimiter{
		Cmd:      cmd,
		Interval: interval,
		Rate:     rate,
	}
}
