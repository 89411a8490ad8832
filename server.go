package foyer

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/foyerweb/foyer/internal/errs"
)

// Compile-time check that HTTPServer fulfills the Server contract.
var _ Server = &HTTPServer{}

// Server is the front-controller contract: a single http.Handler ingress
// that owns route registration and can be started on an address. The entry
// point is the only component a caller ever talks to; routing, handling and
// rendering happen behind it and report their failures back to it.
type Server interface {
	http.Handler
	// Start serves on the given network address until the listener fails or
	// the server is shut down.
	Start(addr string) error
	// registerRoute is internal on purpose: callers register through the
	// method helpers (GET, POST, ...) which fix the HTTP method.
	registerRoute(method string, path string, handleFunc HandleFunc, mils ...Middleware)
}

// HTTPServerOption configures an HTTPServer during construction, the usual
// functional-options pattern: each option is a function mutating the server
// being built.
type HTTPServerOption func(server *HTTPServer)

// HTTPServer is the front controller. One instance serves all requests:
// ServeHTTP performs the ingress pre-processing, hands the request to the
// router for resolution, runs the middleware chain around the resolved
// handler, and flushes the buffered response exactly once at the end.
//
// The embedded router and all configuration are fixed before Start; after
// that the server is read-only shared state across request goroutines.
type HTTPServer struct {
	router
	log            Logger
	templateEngine TemplateEngine
	middlewares    []Middleware
	httpServer     *http.Server
}

// ServerConfig groups the transport-level knobs of the embedded
// http.Server.
type ServerConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
}

// DefaultServerConfig returns the timeouts the server runs with when the
// caller does not provide any.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
}

// WithServerConfig applies transport-level configuration.
func WithServerConfig(config ServerConfig) HTTPServerOption {
	return func(s *HTTPServer) {
		if s.httpServer == nil {
			s.httpServer = &http.Server{}
		}
		s.httpServer.ReadTimeout = config.ReadTimeout
		s.httpServer.WriteTimeout = config.WriteTimeout
		s.httpServer.IdleTimeout = config.IdleTimeout
		s.httpServer.ReadHeaderTimeout = config.ReadHeaderTimeout
		s.httpServer.MaxHeaderBytes = config.MaxHeaderBytes
	}
}

// InitHTTPServer builds a front controller. Without options the server has
// an empty registry, the package default logger, no template engine (view
// handlers then fail to render until one is set) and a default handler that
// answers every unrouted request with a 404 APIError.
func InitHTTPServer(opts ...HTTPServerOption) *HTTPServer {
	res := &HTTPServer{
		router: initRouter(),
		log:    GetDefaultLogger(),
	}
	res.router.defaultHandler = func(ctx *Context) {
		ctx.respondAPIError(errs.NewResourceError("no handler for this path"))
	}

	for _, opt := range opts {
		opt(res)
	}

	return res
}

// ServerWithTemplateEngine installs the renderer used by view handlers.
func ServerWithTemplateEngine(templateEngine TemplateEngine) HTTPServerOption {
	return func(server *HTTPServer) {
		server.templateEngine = templateEngine
	}
}

// ServerWithLogger replaces the package default logger for this server.
func ServerWithLogger(log Logger) HTTPServerOption {
	return func(server *HTTPServer) {
		if log != nil {
			server.log = log
		}
	}
}

// ServerWithDefaultHandler replaces the fallback handler every non-matching
// path resolves to. Keeping resolution total is the point of the fallback;
// the handler itself decides what "unknown path" means for the application.
func ServerWithDefaultHandler(handleFunc HandleFunc) HTTPServerOption {
	return func(server *HTTPServer) {
		if handleFunc != nil {
			server.router.defaultHandler = handleFunc
		}
	}
}

// ServerWithStrictRouting disables the fallback: requests that match no
// registered route are answered with a 404 APIError and reported as
// unroutable, instead of being handed to the default handler.
func ServerWithStrictRouting() HTTPServerOption {
	return func(server *HTTPServer) {
		server.router.strict = true
	}
}

// Use appends global middleware. Global middleware wraps every request,
// including ones resolved to the default handler; it runs outside any
// per-route middleware.
func (s *HTTPServer) Use(mdls ...Middleware) {
	s.middlewares = append(s.middlewares, mdls...)
}

// UseRoute attaches middleware to one registered route. Panics if the route
// does not exist; like registration itself this is a startup-time act.
func (s *HTTPServer) UseRoute(method string, path string, mils ...Middleware) {
	s.router.useRoute(method, path, mils...)
}

// ServeHTTP is the single ingress. Pre-processing happens here, exactly
// once per request and before any routing decision: the request is vetted,
// given an id and its arrival recorded. A request that fails vetting is
// answered directly — the router is never consulted for it.
func (s *HTTPServer) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	ctx := &Context{
		Request:        request,
		ResponseWriter: writer,
		templateEngine: s.templateEngine,
	}

	if request == nil || request.URL == nil {
		ctx.respondAPIError(errs.NewValidationError("malformed request"))
		s.flashResp(ctx)
		return
	}

	ctx.RequestID = uuid.NewString()
	ctx.Header("X-Request-Id", ctx.RequestID)
	s.log.Debug("request %s arrived: %s %s", ctx.RequestID, request.Method, request.URL.Path)

	s.server(ctx)
}

// server resolves the route and drives the chain: per-route middleware
// innermost, global middleware around it, and an outermost wrapper that
// honors aborts and performs the one flush per request.
func (s *HTTPServer) server(ctx *Context) {
	mi, err := s.findRoute(ctx.Request.Method, ctx.Request.URL.Path)
	if err != nil {
		// Strict mode miss. Resolution is total otherwise.
		ctx.fail(err)
		ctx.respondAPIError(errs.NewResourceError("no handler for this path"))
		s.flashResp(ctx)
		s.log.Warn("request %s unroutable: %s %s", ctx.RequestID, ctx.Request.Method, ctx.Request.URL.Path)
		return
	}

	ctx.MatchedRoute = mi.route.pattern

	root := mi.route.handler
	for i := len(mi.route.mils) - 1; i >= 0; i-- {
		root = mi.route.mils[i](root)
	}
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		root = s.middlewares[i](root)
	}

	var flush Middleware = func(next HandleFunc) HandleFunc {
		return func(ctx *Context) {
			if ctx.Aborted {
				s.flashResp(ctx)
				return
			}
			next(ctx)
			s.flashResp(ctx)
		}
	}
	root = flush(root)

	root(ctx)

	if failure := ctx.Failure(); failure != nil {
		s.log.Error("request %s failed: %v", ctx.RequestID, failure)
	}
}

// flashResp writes the buffered status and body to the client. Safe to call
// when a handler already wrote through the ResponseWriter directly: the
// status line goes out at most once and an empty buffer writes nothing.
func (s *HTTPServer) flashResp(ctx *Context) {
	if ctx.headerWritten && ctx.RespData == nil {
		return
	}
	if ctx.RespStatusCode == 0 {
		ctx.RespStatusCode = http.StatusOK
	}
	ctx.writeHeader(ctx.RespStatusCode)
	if len(ctx.RespData) == 0 {
		return
	}
	if _, err := ctx.ResponseWriter.Write(ctx.RespData); err != nil {
		s.log.Error("request %s: failed to write response: %v", ctx.RequestID, err)
	}
}

// Start serves plain HTTP on addr. It blocks until the listener fails or
// Shutdown is called.
func (s *HTTPServer) Start(addr string) error {
	s.ensureHTTPServer()
	s.httpServer.Addr = addr

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.log.Info("server listening on %s", addr)
	return s.httpServer.Serve(l)
}

// StartTLS serves HTTPS on addr with the given certificate pair.
func (s *HTTPServer) StartTLS(addr, certFile, keyFile string) error {
	s.ensureHTTPServer()
	s.httpServer.Addr = addr

	s.log.Info("server listening on %s (TLS)", addr)
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown stops accepting new connections and waits for in-flight requests
// within the bounds of ctx.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *HTTPServer) ensureHTTPServer() {
	if s.httpServer == nil {
		cfg := DefaultServerConfig()
		s.httpServer = &http.Server{
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		}
	}
	s.httpServer.Handler = s
}

// GET registers a handler for GET requests on path.
func (s *HTTPServer) GET(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodGet, path, handleFunc, ms...)
}

// HEAD registers a handler for HEAD requests on path.
func (s *HTTPServer) HEAD(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodHead, path, handleFunc, ms...)
}

// POST registers a handler for POST requests on path.
func (s *HTTPServer) POST(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodPost, path, handleFunc, ms...)
}

// PUT registers a handler for PUT requests on path.
func (s *HTTPServer) PUT(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodPut, path, handleFunc, ms...)
}

// PATCH registers a handler for PATCH requests on path.
func (s *HTTPServer) PATCH(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodPatch, path, handleFunc, ms...)
}

// DELETE registers a handler for DELETE requests on path.
func (s *HTTPServer) DELETE(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodDelete, path, handleFunc, ms...)
}

// OPTIONS registers a handler for OPTIONS requests on path.
func (s *HTTPServer) OPTIONS(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.registerRoute(http.MethodOptions, path, handleFunc, ms...)
}
