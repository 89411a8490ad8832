package foyer

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/foyerweb/foyer/internal/errs"
)

// Context carries one request through the dispatch chain. It wraps the
// inbound request (read-only by convention: handlers inspect it, nothing
// mutates it after ingress) and buffers the outbound response so that
// middleware, handler and renderer all operate on values; the entry point
// performs the single write to the client after the chain returns.
//
// A Context is request-local and discarded when the chain completes. The
// only field guarded for concurrent use is the Keys store, for middleware
// that fans work out to goroutines.
type Context struct {
	// Request is the original inbound request.
	Request *http.Request

	// ResponseWriter is the underlying writer. Handlers should prefer the
	// RespData/RespStatusCode buffer; writing here directly bypasses the
	// buffered flush and the error mapping at the entry point.
	ResponseWriter http.ResponseWriter

	// RequestID is assigned at ingress, before any routing decision, and
	// echoed in the X-Request-Id response header.
	RequestID string

	// MatchedRoute is the registered pattern the router resolved, in its
	// registered spelling. Empty until dispatch; "*" when the default
	// handler was selected.
	MatchedRoute string

	// RespData and RespStatusCode buffer the response until the entry point
	// flushes them. A zero status code means "nothing decided yet" and is
	// flushed as 200.
	RespData       []byte
	RespStatusCode int

	// Keys is a request-scoped store shared along the middleware chain.
	Keys map[string]any

	// Aborted stops further processing when set; middlewares check it via
	// the chain, the entry point still flushes whatever was buffered.
	Aborted bool

	templateEngine TemplateEngine
	queryValues    url.Values
	headerWritten  bool
	failure        error
	mutex          sync.RWMutex
}

// Deadline, Done, Err and Value make Context satisfy context.Context by
// delegating to the request context, so a Context can be handed directly to
// storage clients and other context-aware APIs.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.Request.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.Request.Context().Done()
}

func (c *Context) Err() error {
	return c.Request.Context().Err()
}

func (c *Context) Value(key any) any {
	if keyAsString, ok := key.(string); ok {
		if val, exists := c.Get(keyAsString); exists {
			return val
		}
	}
	return c.Request.Context().Value(key)
}

// Set stores a request-scoped value. Safe for concurrent use.
func (c *Context) Set(key string, value any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.Keys == nil {
		c.Keys = make(map[string]any)
	}
	c.Keys[key] = value
}

// Get retrieves a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	value, exists := c.Keys[key]
	return value, exists
}

// BindJSON decodes the request body into val.
func (c *Context) BindJSON(val any) error {
	if val == nil {
		return errs.ErrInputNil()
	}
	if c.Request.Body == nil {
		return errs.ErrBodyNil()
	}
	decoder := json.NewDecoder(c.Request.Body)
	return decoder.Decode(val)
}

// QueryValue returns the first value for the named query parameter. The
// parsed form is cached on first access; the request URL is never parsed
// twice.
func (c *Context) QueryValue(key string) (string, error) {
	if c.queryValues == nil {
		c.queryValues = c.Request.URL.Query()
	}
	vals, ok := c.queryValues[key]
	if !ok || len(vals) == 0 {
		return "", errs.ErrKeyNil()
	}
	return vals[0], nil
}

// Params flattens the query string into the request's parameter mapping:
// one value per key, first value wins. Handlers that only need the simple
// descriptor view of the request read this instead of the raw URL.
func (c *Context) Params() map[string]string {
	if c.queryValues == nil {
		c.queryValues = c.Request.URL.Query()
	}
	params := make(map[string]string, len(c.queryValues))
	for k, vals := range c.queryValues {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	return params
}

// Render executes the named view through the server's template engine and
// buffers the output. It does not decide the status code; that stays with
// the caller so a failed render can still be mapped to an error response.
func (c *Context) Render(viewName string, data any) error {
	if c.templateEngine == nil {
		return errs.ErrRendererMissing()
	}
	out, err := c.templateEngine.Render(c.Request.Context(), viewName, data)
	if err != nil {
		return err
	}
	c.RespData = out
	return nil
}

// RespondWithJSON buffers a JSON response with the given status code.
func (c *Context) RespondWithJSON(code int, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.RespStatusCode = code
	c.RespData = data
	c.Header("Content-Type", "application/json; charset=utf-8")
	return nil
}

// RespondSuccessWithJSON is RespondWithJSON with status 200.
func (c *Context) RespondSuccessWithJSON(val any) error {
	return c.RespondWithJSON(http.StatusOK, val)
}

// Header sets a response header. A no-op once headers have been written.
func (c *Context) Header(key, value string) {
	if c.headerWritten {
		return
	}
	c.ResponseWriter.Header().Set(key, value)
}

// Abort marks the request as terminated; subsequent chain steps are skipped
// by the entry point wrapper.
func (c *Context) Abort() {
	c.Aborted = true
}

// AbortWithStatus terminates the request with the given status code.
func (c *Context) AbortWithStatus(code int) {
	c.RespStatusCode = code
	c.Aborted = true
}

// ClientIP reports the caller's address, preferring the usual proxy headers
// over the socket peer.
func (c *Context) ClientIP() string {
	if ip := c.Request.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	if ip := c.Request.Header.Get("X-Real-Ip"); ip != "" {
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// Failure reports the error recorded during dispatch, if any. The entry
// point is the only component expected to act on it; handlers and
// middlewares report failures, they do not handle them.
func (c *Context) Failure() error {
	return c.failure
}

func (c *Context) fail(err error) {
	if c.failure == nil {
		c.failure = err
	}
}

func (c *Context) respondAPIError(apiErr *errs.APIError) {
	c.RespStatusCode = apiErr.Code
	c.RespData = apiErr.ToJSON()
	c.Header("Content-Type", "application/json; charset=utf-8")
}

// writeHeader writes the status line exactly once per request.
func (c *Context) writeHeader(statusCode int) {
	if c.headerWritten {
		return
	}
	c.ResponseWriter.WriteHeader(statusCode)
	c.headerWritten = true
}
