package foyer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerweb/foyer/internal/errs"
)

func TestRouter_RegisterRoute(t *testing.T) {
	testCases := []struct {
		name      string
		method    string
		path      string
		wantPanic bool
	}{
		{
			name:   "normal path",
			method: http.MethodGet,
			path:   "/user",
		},
		{
			name:   "root path",
			method: http.MethodGet,
			path:   "/",
		},
		{
			name:   "multi segment path",
			method: http.MethodGet,
			path:   "/user/profile",
		},
		{
			name:      "empty path panics",
			method:    http.MethodGet,
			path:      "",
			wantPanic: true,
		},
		{
			name:      "missing leading slash panics",
			method:    http.MethodGet,
			path:      "user",
			wantPanic: true,
		},
		{
			name:      "trailing slash panics",
			method:    http.MethodGet,
			path:      "/user/",
			wantPanic: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := initRouter()
			register := func() {
				r.registerRoute(tc.method, tc.path, func(ctx *Context) {})
			}
			if tc.wantPanic {
				assert.Panics(t, register)
			} else {
				assert.NotPanics(t, register)
			}
		})
	}
}

func TestRouter_RegisterRoute_Duplicate(t *testing.T) {
	r := initRouter()
	r.registerRoute(http.MethodGet, "/user", func(ctx *Context) {})

	assert.Panics(t, func() {
		r.registerRoute(http.MethodGet, "/user", func(ctx *Context) {})
	})
	// duplicates collide case-insensitively
	assert.Panics(t, func() {
		r.registerRoute(http.MethodGet, "/USER", func(ctx *Context) {})
	})
	// same path under another method is a distinct route
	assert.NotPanics(t, func() {
		r.registerRoute(http.MethodPost, "/user", func(ctx *Context) {})
	})
}

func TestRouter_RegisterRoute_NilHandler(t *testing.T) {
	r := initRouter()
	assert.Panics(t, func() {
		r.registerRoute(http.MethodGet, "/user", nil)
	})
}

func TestRouter_FindRoute(t *testing.T) {
	var userHandler HandleFunc = func(ctx *Context) {}
	var defaultHandler HandleFunc = func(ctx *Context) {}

	r := initRouter()
	r.defaultHandler = defaultHandler
	r.registerRoute(http.MethodGet, "/user", userHandler)

	testCases := []struct {
		name         string
		method       string
		path         string
		wantFallback bool
		wantPattern  string
	}{
		{
			name:        "exact match",
			method:      http.MethodGet,
			path:        "/user",
			wantPattern: "/user",
		},
		{
			name:        "uppercase path matches",
			method:      http.MethodGet,
			path:        "/USER",
			wantPattern: "/user",
		},
		{
			name:        "mixed case path matches",
			method:      http.MethodGet,
			path:        "/UsEr",
			wantPattern: "/user",
		},
		{
			name:         "unknown path falls back",
			method:       http.MethodGet,
			path:         "/unknown",
			wantFallback: true,
			wantPattern:  "*",
		},
		{
			name:         "empty path falls back",
			method:       http.MethodGet,
			path:         "",
			wantFallback: true,
			wantPattern:  "*",
		},
		{
			name:         "malformed path falls back",
			method:       http.MethodGet,
			path:         "no-slash",
			wantFallback: true,
			wantPattern:  "*",
		},
		{
			name:         "known path wrong method falls back",
			method:       http.MethodPost,
			path:         "/user",
			wantFallback: true,
			wantPattern:  "*",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mi, err := r.findRoute(tc.method, tc.path)
			require.NoError(t, err)
			require.NotNil(t, mi)
			assert.Equal(t, tc.wantFallback, mi.fallback)
			assert.Equal(t, tc.wantPattern, mi.route.pattern)
			assert.NotNil(t, mi.route.handler)
		})
	}
}

func TestRouter_FindRoute_Strict(t *testing.T) {
	r := initRouter()
	r.strict = true
	r.registerRoute(http.MethodGet, "/user", func(ctx *Context) {})

	mi, err := r.findRoute(http.MethodGet, "/user")
	require.NoError(t, err)
	assert.Equal(t, "/user", mi.route.pattern)

	_, err = r.findRoute(http.MethodGet, "/unknown")
	assert.ErrorIs(t, err, errs.ErrUnroutableRequest)
}

func TestRouter_UseRoute(t *testing.T) {
	r := initRouter()
	r.registerRoute(http.MethodGet, "/user", func(ctx *Context) {})

	var mdl Middleware = func(next HandleFunc) HandleFunc { return next }

	assert.NotPanics(t, func() {
		r.useRoute(http.MethodGet, "/user", mdl)
	})
	assert.Panics(t, func() {
		r.useRoute(http.MethodGet, "/missing", mdl)
	})

	mi, err := r.findRoute(http.MethodGet, "/user")
	require.NoError(t, err)
	assert.Len(t, mi.route.mils, 1)
}
