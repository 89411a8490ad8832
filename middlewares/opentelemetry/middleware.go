// Package opentelemetry opens one span per request, propagating any
// inbound trace context and naming the span after the matched route once
// dispatch has resolved it.
package opentelemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/foyerweb/foyer"
)

const instrumentationName = "github.com/foyerweb/foyer/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	// Tracer to create spans with; defaults to the global provider's tracer
	// for this package.
	Tracer trace.Tracer
}

func (m *MiddlewareBuilder) Build() foyer.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}

	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			reqCtx := ctx.Request.Context()
			reqCtx = otel.GetTextMapPropagator().Extract(reqCtx, propagation.HeaderCarrier(ctx.Request.Header))

			reqCtx, span := m.Tracer.Start(reqCtx, "unknown")
			defer func() {
				// The route is only known after dispatch; rename the span now.
				if ctx.MatchedRoute != "" {
					span.SetName(ctx.MatchedRoute)
				}
				span.SetAttributes(attribute.Int("http.status", ctx.RespStatusCode))
				span.End()
			}()

			span.SetAttributes(
				attribute.String("http.method", ctx.Request.Method),
				attribute.String("http.url", ctx.Request.URL.String()),
				attribute.String("http.host", ctx.Request.Host),
				attribute.String("http.request_id", ctx.RequestID),
			)

			ctx.Request = ctx.Request.WithContext(reqCtx)
			next(ctx)
		}
	}
}
