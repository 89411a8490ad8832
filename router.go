package foyer

import (
	"strings"

	"github.com/foyerweb/foyer/internal/errs"
)

// router is the dispatch registry: for each HTTP method it maps a
// normalized request path to exactly one registered handler. Matching is
// exact and case-insensitive — paths are lower-cased once at registration
// and once at lookup, so "/user", "/USER" and "/User" all resolve to the
// same entry.
//
// Resolution is total by default: any path that matches no entry — unknown,
// empty, malformed, whatever the client sent — resolves to the default
// handler. A router never fails to produce a handler unless strict mode is
// enabled, in which case a miss is reported as an unroutable request.
//
// The registry is populated during startup and read-only while serving;
// that is what makes it safe to share across request goroutines without
// locking. Registration after Start is not supported.
type router struct {
	// routes: method → normalized path → registration.
	routes map[string]map[string]*registeredRoute

	// defaultHandler absorbs every miss. Always set; InitHTTPServer installs
	// a 404-producing fallback that options may replace.
	defaultHandler HandleFunc

	// strict disables the fallback: misses surface as errors instead.
	strict bool
}

// registeredRoute keeps the handler together with its registration-time
// spelling (reported as MatchedRoute) and per-route middleware.
type registeredRoute struct {
	pattern string
	handler HandleFunc
	mils    []Middleware
}

// matchInfo is the outcome of a lookup: the resolved registration and
// whether it was the fallback rather than a registered entry.
type matchInfo struct {
	route    *registeredRoute
	fallback bool
}

func initRouter() router {
	return router{
		routes: make(map[string]map[string]*registeredRoute),
	}
}

// registerRoute records a handler for method+path. Route registration is a
// startup-time programming act, so malformed input panics rather than
// returning an error: empty paths, paths without a leading slash, paths
// with a trailing slash (other than "/" itself) and duplicates — including
// case-insensitive duplicates — are all registration bugs.
func (r *router) registerRoute(method string, path string, handleFunc HandleFunc, mils ...Middleware) {
	if path == "" {
		panic(errs.ErrPathEmpty())
	}
	if !strings.HasPrefix(path, "/") {
		panic(errs.ErrPathNoLeadingSlash())
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		panic(errs.ErrPathTrailingSlash())
	}
	if handleFunc == nil {
		panic(errs.ErrInputNil())
	}

	key := normalizePath(path)
	methodRoutes, ok := r.routes[method]
	if !ok {
		methodRoutes = make(map[string]*registeredRoute)
		r.routes[method] = methodRoutes
	}
	if _, exists := methodRoutes[key]; exists {
		panic(errs.ErrRouteDuplicate(method, path))
	}
	methodRoutes[key] = &registeredRoute{
		pattern: path,
		handler: handleFunc,
		mils:    mils,
	}
}

// useRoute attaches middleware to an already registered route.
func (r *router) useRoute(method string, path string, mils ...Middleware) {
	methodRoutes, ok := r.routes[method]
	if !ok {
		panic(errs.ErrUnroutableRequest)
	}
	route, ok := methodRoutes[normalizePath(path)]
	if !ok {
		panic(errs.ErrUnroutableRequest)
	}
	route.mils = append(route.mils, mils...)
}

// findRoute resolves a request to its handler. With the fallback in place
// this is a total function over arbitrary method/path input; the returned
// error is non-nil only in strict mode, and then it is always
// errs.ErrUnroutableRequest.
func (r *router) findRoute(method string, path string) (*matchInfo, error) {
	if methodRoutes, ok := r.routes[method]; ok {
		if route, ok := methodRoutes[normalizePath(path)]; ok {
			return &matchInfo{route: route}, nil
		}
	}
	if r.strict {
		return nil, errs.ErrUnroutableRequest
	}
	if r.defaultHandler == nil {
		return nil, errs.ErrDefaultHandlerUnset
	}
	return &matchInfo{
		route:    &registeredRoute{pattern: "*", handler: r.defaultHandler},
		fallback: true,
	}, nil
}

func normalizePath(path string) string {
	return strings.ToLower(path)
}
