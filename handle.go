package foyer

import (
	"net/http"

	"github.com/foyerweb/foyer/internal/errs"
)

// HandleFunc is the unit of dispatch: every registered route, every
// middleware layer and the default fallback are ultimately functions of this
// shape. The Context carries the request in and the buffered response out,
// so a HandleFunc returns nothing; failures are recorded on the Context and
// surfaced by the entry point.
type HandleFunc func(ctx *Context)

// ViewResult is what a view-producing handler hands to the renderer: the
// identifier of the view to render plus the data the template consumes. It
// is produced once per request by exactly one handler and consumed once by
// the template engine.
type ViewResult struct {
	// View names the template to execute, e.g. "userView".
	View string
	// Data is passed to the template untouched. May be nil.
	Data any
}

// ViewHandler is the polymorphic handler capability: it executes domain
// logic for a request and reports which view should present the outcome.
// Implementations are expected to be stateless values built once at startup
// and shared across all requests; anything request-scoped belongs on the
// Context.
type ViewHandler interface {
	Process(ctx *Context) (ViewResult, error)
}

// ViewHandlerFunc adapts a plain function to the ViewHandler interface.
type ViewHandlerFunc func(ctx *Context) (ViewResult, error)

func (f ViewHandlerFunc) Process(ctx *Context) (ViewResult, error) {
	return f(ctx)
}

// View adapts a ViewHandler into a HandleFunc, fixing the handler→renderer
// half of the dispatch chain: process the request exactly once, then render
// the returned view identifier exactly once through the server's template
// engine. A failure in either step short-circuits the other — a failed
// handler never reaches the renderer, and a failed render is reported as a
// render failure carrying the view name that could not be resolved.
func View(h ViewHandler) HandleFunc {
	return func(ctx *Context) {
		res, err := h.Process(ctx)
		if err != nil {
			ctx.fail(errs.WrapHandlerFailure(err))
			ctx.respondAPIError(errs.NewInternalError("handler failed"))
			return
		}
		if err := ctx.Render(res.View, res.Data); err != nil {
			ctx.fail(errs.WrapRenderFailure(res.View, err))
			ctx.respondAPIError(errs.NewRenderError("failed to render view"))
			return
		}
		if ctx.RespStatusCode == 0 {
			ctx.RespStatusCode = http.StatusOK
		}
	}
}
