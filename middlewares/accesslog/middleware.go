// Package accesslog emits one structured log line per request after the
// rest of the chain has run, so the line carries the final status code and
// the handling duration.
package accesslog

import (
	"encoding/json"
	"time"

	"github.com/foyerweb/foyer"
)

type MiddlewareBuilder struct {
	logFunc func(log string)
}

func InitMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(log string) {
			foyer.GetDefaultLogger().Info(log)
		},
	}
}

// LogFunc replaces the sink the JSON line is written to.
func (b *MiddlewareBuilder) LogFunc(fn func(log string)) *MiddlewareBuilder {
	b.logFunc = fn
	return b
}

func (b *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			start := time.Now()
			defer func() {
				entry := accessLog{
					RequestID:  ctx.RequestID,
					Host:       ctx.Request.Host,
					Route:      ctx.MatchedRoute,
					HTTPMethod: ctx.Request.Method,
					Path:       ctx.Request.URL.Path,
					Status:     ctx.RespStatusCode,
					DurationMs: time.Since(start).Milliseconds(),
				}
				data, _ := json.Marshal(entry)
				b.logFunc(string(data))
			}()
			next(ctx)
		}
	}
}

type accessLog struct {
	RequestID  string `json:"request_id,omitempty"`
	Host       string `json:"host,omitempty"`
	Route      string `json:"route,omitempty"`
	HTTPMethod string `json:"http_method,omitempty"`
	Path       string `json:"path,omitempty"`
	Status     int    `json:"status,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
