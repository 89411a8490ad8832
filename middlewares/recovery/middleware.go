// Package recovery converts panics escaping the dispatch chain into a
// controlled error response instead of tearing down the connection.
package recovery

import (
	"net/http"

	"github.com/foyerweb/foyer"
)

// MiddlewareBuilder configures the panic recovery middleware.
type MiddlewareBuilder struct {
	// StatusCode is sent when a panic is recovered.
	StatusCode int

	// ErrMsg is the response body sent with StatusCode. Kept generic on
	// purpose; panic values never reach the client.
	ErrMsg []byte

	// LogFunc records the recovered panic value together with the request
	// context.
	LogFunc func(ctx *foyer.Context, err any)
}

func InitMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		StatusCode: http.StatusInternalServerError,
		ErrMsg:     []byte(`{"type":"INTERNAL_ERROR","code":500,"message":"internal server error"}`),
		LogFunc: func(ctx *foyer.Context, err any) {
			foyer.GetDefaultLogger().Error("request %s panicked: %v", ctx.RequestID, err)
		},
	}
}

func (m *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			defer func() {
				if err := recover(); err != nil {
					ctx.RespStatusCode = m.StatusCode
					ctx.RespData = m.ErrMsg
					m.LogFunc(ctx, err)
				}
			}()
			next(ctx)
		}
	}
}
