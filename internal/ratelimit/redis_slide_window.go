package ratelimit

import (
	"context"
	_ "embed"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed slide_window.lua
var luaSlideWindow string

// RedisSlidingWindowLimiter enforces a sliding-window rate limit backed by
// redis, so the budget is shared across every process pointing at the same
// instance. The window bookkeeping runs server-side in a lua script, which
// keeps the check-and-record step atomic.
type RedisSlidingWindowLimiter struct {
	// Cmd is any redis client satisfying Cmdable: a single client, a
	// cluster client, or a pipeline.
	Cmd redis.Cmdable

	// Interval is the window size.
	Interval time.Duration

	// Rate is the maximum number of requests allowed inside one window.
	Rate int
}

func (r *RedisSlidingWindowLimiter) Limit(ctx context.Context, key string) (bool, error) {
	return r.Cmd.Eval(ctx, luaSlideWindow, []string{key},
		r.Interval.Milliseconds(), r.Rate, time.Now().UnixMilli()).Bool()
}
