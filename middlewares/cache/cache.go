// Package cache serves repeated GET requests out of an in-memory TTL cache
// instead of re-running the dispatch chain below it.
package cache

import (
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/foyerweb/foyer"
)

// ResponseCache stores rendered responses keyed by a caller-provided key
// function. Entries expire after the configured TTL; expired entries are
// purged in the background by the underlying store.
type ResponseCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// cachedResponse is the stored value: the buffered body, the status code
// and the Content-Type the original response carried.
type cachedResponse struct {
	data        []byte
	statusCode  int
	contentType string
}

// New builds a ResponseCache whose entries live for ttl.
func New(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Middleware produces the caching middleware. keyFunc derives the cache key
// from the request; returning "" skips caching for that request. Only GET
// requests are cached, and only responses with a 2xx status are stored.
func (rc *ResponseCache) Middleware(keyFunc func(*foyer.Context) string) foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			if ctx.Request.Method != http.MethodGet {
				next(ctx)
				return
			}

			key := keyFunc(ctx)
			if key == "" {
				next(ctx)
				return
			}

			if value, ok := rc.store.Get(key); ok {
				if cached, ok := value.(*cachedResponse); ok {
					ctx.RespStatusCode = cached.statusCode
					ctx.RespData = cached.data
					if cached.contentType != "" {
						ctx.Header("Content-Type", cached.contentType)
					}
					ctx.Header("X-Cache", "HIT")
					return
				}
			}

			next(ctx)

			// An undecided status flushes as 200, so treat it as cacheable.
			status := ctx.RespStatusCode
			if status == 0 {
				status = http.StatusOK
			}
			if status >= 200 && status < 300 && len(ctx.RespData) > 0 {
				body := make([]byte, len(ctx.RespData))
				copy(body, ctx.RespData)
				rc.store.Set(key, &cachedResponse{
					data:        body,
					statusCode:  status,
					contentType: ctx.ResponseWriter.Header().Get("Content-Type"),
				}, rc.ttl)
			}
		}
	}
}

// RequestURIKey is the usual key function: the full request URI including
// the query string.
func RequestURIKey(ctx *foyer.Context) string {
	return ctx.Request.RequestURI
}

// Flush drops every cached entry.
func (rc *ResponseCache) Flush() {
	rc.store.Flush()
}
