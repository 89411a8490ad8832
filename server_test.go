package foyer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEngine is a TemplateEngine stub that records every view it was
// asked to render.
type recordingEngine struct {
	mu    sync.Mutex
	calls []string
	out   map[string]string
	err   error
}

func (e *recordingEngine) Render(ctx context.Context, viewName string, data any) ([]byte, error) {
	e.mu.Lock()
	e.calls = append(e.calls, viewName)
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	if out, ok := e.out[viewName]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("undefined view %q", viewName)
}

func (e *recordingEngine) renderedViews() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

func newTestEngine() *recordingEngine {
	return &recordingEngine{
		out: map[string]string{
			"userView":    "<p>user page</p>",
			"defaultView": "<p>default page</p>",
		},
	}
}

// newUserServer wires the canonical fixture: a user handler on /user
// producing userView and a default handler producing defaultView.
func newUserServer(engine TemplateEngine, opts ...HTTPServerOption) *HTTPServer {
	opts = append([]HTTPServerOption{
		ServerWithTemplateEngine(engine),
		ServerWithDefaultHandler(View(ViewHandlerFunc(func(ctx *Context) (ViewResult, error) {
			return ViewResult{View: "defaultView"}, nil
		}))),
	}, opts...)
	s := InitHTTPServer(opts...)
	s.GET("/user", View(ViewHandlerFunc(func(ctx *Context) (ViewResult, error) {
		return ViewResult{View: "userView"}, nil
	})))
	return s
}

func doRequest(s *HTTPServer, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	recorder := httptest.NewRecorder()
	s.ServeHTTP(recorder, req)
	return recorder
}

func TestHTTPServer_Dispatch(t *testing.T) {
	testCases := []struct {
		name     string
		target   string
		wantBody string
		wantView string
	}{
		{
			name:     "registered path selects user handler",
			target:   "/user",
			wantBody: "<p>user page</p>",
			wantView: "userView",
		},
		{
			name:     "uppercase path selects user handler",
			target:   "/USER",
			wantBody: "<p>user page</p>",
			wantView: "userView",
		},
		{
			name:     "mixed case path selects user handler",
			target:   "/UsEr",
			wantBody: "<p>user page</p>",
			wantView: "userView",
		},
		{
			name:     "unknown path selects default handler",
			target:   "/unknown",
			wantBody: "<p>default page</p>",
			wantView: "defaultView",
		},
		{
			name:     "empty path selects default handler",
			target:   "http://example.com",
			wantBody: "<p>default page</p>",
			wantView: "defaultView",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine()
			s := newUserServer(engine)

			recorder := doRequest(s, http.MethodGet, tc.target)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tc.wantBody, recorder.Body.String())
			// the renderer ran exactly once, with exactly the view the
			// selected handler returned
			assert.Equal(t, []string{tc.wantView}, engine.renderedViews())
		})
	}
}

func TestHTTPServer_PreProcessingBeforeRouting(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine)

	first := doRequest(s, http.MethodGet, "/user")
	second := doRequest(s, http.MethodGet, "/user")

	// every request gets an id at ingress, and each gets its own
	assert.NotEmpty(t, first.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, second.Header().Get("X-Request-Id"))
	assert.NotEqual(t, first.Header().Get("X-Request-Id"), second.Header().Get("X-Request-Id"))
}

func TestHTTPServer_IdempotentPerRequest(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine)

	first := doRequest(s, http.MethodGet, "/user")
	second := doRequest(s, http.MethodGet, "/user")

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	// two independent chains, one render each
	assert.Equal(t, []string{"userView", "userView"}, engine.renderedViews())
}

func TestHTTPServer_StrictRouting(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine, ServerWithStrictRouting())

	hit := doRequest(s, http.MethodGet, "/user")
	assert.Equal(t, http.StatusOK, hit.Code)

	miss := doRequest(s, http.MethodGet, "/unknown")
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.JSONEq(t,
		`{"type":"RESOURCE_ERROR","code":404,"message":"no handler for this path"}`,
		miss.Body.String())
	// the default handler was never consulted
	assert.Empty(t, engine.renderedViews())
}

func TestHTTPServer_DefaultFallbackResponse(t *testing.T) {
	// without options every unrouted request gets the built-in 404
	s := InitHTTPServer()
	recorder := doRequest(s, http.MethodGet, "/anything")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.JSONEq(t,
		`{"type":"RESOURCE_ERROR","code":404,"message":"no handler for this path"}`,
		recorder.Body.String())
}

func TestHTTPServer_HandlerFailure(t *testing.T) {
	engine := newTestEngine()
	s := InitHTTPServer(ServerWithTemplateEngine(engine))
	s.GET("/boom", View(ViewHandlerFunc(func(ctx *Context) (ViewResult, error) {
		return ViewResult{}, errors.New("domain logic failed")
	})))

	recorder := doRequest(s, http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t,
		`{"type":"INTERNAL_ERROR","code":500,"message":"handler failed"}`,
		recorder.Body.String())
	// a failed handler never reaches the renderer
	assert.Empty(t, engine.renderedViews())
}

func TestHTTPServer_RenderFailure(t *testing.T) {
	engine := newTestEngine()
	engine.err = errors.New("template store unavailable")
	s := newUserServer(engine)

	recorder := doRequest(s, http.MethodGet, "/user")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t,
		`{"type":"RENDER_ERROR","code":500,"message":"failed to render view"}`,
		recorder.Body.String())
}

func TestHTTPServer_MiddlewareOrder(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine)

	var order []string
	step := func(name string) Middleware {
		return func(next HandleFunc) HandleFunc {
			return func(ctx *Context) {
				order = append(order, name+"-in")
				next(ctx)
				order = append(order, name+"-out")
			}
		}
	}

	s.Use(step("global1"), step("global2"))
	s.UseRoute(http.MethodGet, "/user", step("route"))

	recorder := doRequest(s, http.MethodGet, "/user")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{
		"global1-in", "global2-in", "route-in",
		"route-out", "global2-out", "global1-out",
	}, order)
}

func TestHTTPServer_MiddlewareAbort(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine)
	s.Use(func(next HandleFunc) HandleFunc {
		return func(ctx *Context) {
			ctx.AbortWithStatus(http.StatusUnauthorized)
		}
	})

	recorder := doRequest(s, http.MethodGet, "/user")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	// the chain stopped before the handler, so nothing rendered
	assert.Empty(t, engine.renderedViews())
}

func TestHTTPServer_GlobalMiddlewareWrapsFallback(t *testing.T) {
	engine := newTestEngine()
	s := newUserServer(engine)

	var seen []string
	s.Use(func(next HandleFunc) HandleFunc {
		return func(ctx *Context) {
			next(ctx)
			seen = append(seen, ctx.MatchedRoute)
		}
	})

	doRequest(s, http.MethodGet, "/unknown")
	doRequest(s, http.MethodGet, "/user")

	assert.Equal(t, []string{"*", "/user"}, seen)
}

func TestHTTPServer_ViewHandlerWithData(t *testing.T) {
	engine := &GoTemplateEngine{}
	require.NoError(t, parseTestTemplates(engine))

	s := InitHTTPServer(ServerWithTemplateEngine(engine))
	s.GET("/user", View(ViewHandlerFunc(func(ctx *Context) (ViewResult, error) {
		name, err := ctx.QueryValue("name")
		if err != nil {
			name = "anonymous"
		}
		return ViewResult{View: "userView", Data: map[string]string{"Name": name}}, nil
	})))

	recorder := doRequest(s, http.MethodGet, "/user?name=ada")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Hello ada", recorder.Body.String())

	recorder = doRequest(s, http.MethodGet, "/user")
	assert.Equal(t, "Hello anonymous", recorder.Body.String())
}

func TestHTTPServer_Shutdown(t *testing.T) {
	s := InitHTTPServer()
	// shutting down a never-started server is a no-op
	assert.NoError(t, s.Shutdown(context.Background()))
}
