// Package activelimit caps the number of requests being handled at once.
// Requests beyond the cap are shed immediately instead of queueing, keeping
// latency bounded under overload.
package activelimit

import (
	"net/http"

	"go.uber.org/atomic"

	"github.com/foyerweb/foyer"
)

type MiddlewareBuilder struct {
	maxActive               *atomic.Int64
	countActive             *atomic.Int64
	overloadResponseHandler func(ctx *foyer.Context)
}

// InitMiddlewareBuilder caps concurrent handling at maxActive. The counters
// are atomics so the hot path takes no locks.
func InitMiddlewareBuilder(maxActive int64) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		maxActive:   atomic.NewInt64(maxActive),
		countActive: atomic.NewInt64(0),
	}
}

// SetOverloadResponseHandler replaces the default 503 shed response.
func (b *MiddlewareBuilder) SetOverloadResponseHandler(fn func(ctx *foyer.Context)) *MiddlewareBuilder {
	b.overloadResponseHandler = fn
	return b
}

func (b *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			if b.countActive.Add(1) > b.maxActive.Load() {
				b.countActive.Sub(1)
				if b.overloadResponseHandler != nil {
					b.overloadResponseHandler(ctx)
				} else {
					ctx.AbortWithStatus(http.StatusServiceUnavailable)
				}
				return
			}
			defer b.countActive.Sub(1)
			next(ctx)
		}
	}
}
