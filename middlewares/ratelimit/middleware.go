// Package ratelimit rejects requests once a client exhausts its budget.
// The strategy and backing store live behind the internal Limiter
// interface; this package ships a redis-backed sliding window.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/foyerweb/foyer"
	"github.com/foyerweb/foyer/internal/errs"
	"github.com/foyerweb/foyer/internal/ratelimit"
)

type MiddlewareBuilder struct {
	limiter       ratelimit.Limiter
	keyFn         func(ctx *foyer.Context) string
	logFn         func(level string, msg any, args ...any)
	retryAfterSec int
}

// InitMiddlewareBuilder sets up the builder with the given limiter and the
// Retry-After value sent on rejection. The default key is the client IP;
// the default log sink is the package logger.
func InitMiddlewareBuilder(limiter ratelimit.Limiter, retryAfterSec int) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		limiter:       limiter,
		retryAfterSec: retryAfterSec,
		keyFn: func(ctx *foyer.Context) string {
			var b strings.Builder
			b.WriteString("ip-limiter")
			b.WriteString(":")
			b.WriteString(ctx.ClientIP())
			return b.String()
		},
		logFn: func(level string, msg any, args ...any) {
			log := foyer.GetDefaultLogger()
			switch level {
			case "error":
				log.Error("%v %v", msg, args)
			default:
				log.Warn("%v %v", msg, args)
			}
		},
	}
}

// SetKeyGenFunc replaces the per-request limit key, e.g. to key on an
// authenticated user instead of the client IP.
func (b *MiddlewareBuilder) SetKeyGenFunc(fn func(*foyer.Context) string) *MiddlewareBuilder {
	b.keyFn = fn
	return b
}

// SetLogFunc replaces the log sink.
func (b *MiddlewareBuilder) SetLogFunc(fn func(level string, msg any, args ...any)) *MiddlewareBuilder {
	b.logFn = fn
	return b
}

func (b *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			limited, err := b.limit(ctx)
			if err != nil {
				// The limiter itself failed; failing closed here would turn a
				// redis outage into a full outage.
				b.logFn("error", "rate limit check failed:", err)
				next(ctx)
				return
			}
			if limited {
				b.logFn("warn", "request rejected by rate limiter")
				ctx.Header("Retry-After", strconv.Itoa(b.retryAfterSec))
				ctx.RespStatusCode = http.StatusTooManyRequests
				ctx.RespData = errs.NewRateLimitError("too many requests, please try again later").ToJSON()
				ctx.Abort()
				return
			}
			next(ctx)
		}
	}
}

func (b *MiddlewareBuilder) limit(ctx *foyer.Context) (bool, error) {
	key := b.keyFn(ctx)
	if key == "" {
		b.logFn("error", "failed to generate a rate limit key")
		return false, nil
	}
	return b.limiter.Limit(ctx, key)
}
