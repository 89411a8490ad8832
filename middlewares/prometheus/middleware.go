// Package prometheus observes per-route request latency as a prometheus
// summary, labeled by matched route, method and status.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/foyerweb/foyer"
)

// MiddlewareBuilder carries the metric identity: namespace/subsystem/name
// place the summary in the metric hierarchy, Help documents it.
type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func InitMiddlewareBuilder(namespace, subsystem, name, help string) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

// Build registers the summary vector with the default registry and returns
// the observing middleware. Registering the same identity twice panics, as
// MustRegister does; build once per server.
func (m *MiddlewareBuilder) Build() foyer.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: m.Namespace,
		Subsystem: m.Subsystem,
		Name:      m.Name,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"pattern", "method", "status"})

	prometheus.MustRegister(vector)

	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime).Microseconds()
				pattern := ctx.MatchedRoute
				if pattern == "" {
					pattern = "unknown"
				}
				vector.WithLabelValues(pattern, ctx.Request.Method,
					strconv.Itoa(ctx.RespStatusCode)).Observe(float64(duration))
			}()
			next(ctx)
		}
	}
}
