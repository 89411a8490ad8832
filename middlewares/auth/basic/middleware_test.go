package basic

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerweb/foyer"
)

func newProtectedServer(t *testing.T, patterns []string) *foyer.HTTPServer {
	t.Helper()
	builder, err := InitMiddlewareBuilder("admin", "secret", "test")
	require.NoError(t, err)
	if patterns != nil {
		_, err = builder.IgnorePaths(patterns)
		require.NoError(t, err)
	}

	s := foyer.InitHTTPServer()
	s.Use(builder.Build())
	s.GET("/private", func(ctx *foyer.Context) {
		ctx.RespData = []byte("secret data")
	})
	s.GET("/public", func(ctx *foyer.Context) {
		ctx.RespData = []byte("public data")
	})
	return s
}

func TestMiddlewareBuilder_RejectsMissingCredentials(t *testing.T) {
	s := newProtectedServer(t, nil)

	recorder := httptest.NewRecorder()
	s.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Header().Get("WWW-Authenticate"), "Basic realm=")
}

func TestMiddlewareBuilder_RejectsWrongCredentials(t *testing.T) {
	s := newProtectedServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.SetBasicAuth("admin", "wrong")
	recorder := httptest.NewRecorder()
	s.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareBuilder_AcceptsValidCredentials(t *testing.T) {
	s := newProtectedServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.SetBasicAuth("admin", "secret")
	recorder := httptest.NewRecorder()
	s.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "secret data", recorder.Body.String())
}

func TestMiddlewareBuilder_IgnoredPathsPass(t *testing.T) {
	s := newProtectedServer(t, []string{"^/public$"})

	recorder := httptest.NewRecorder()
	s.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/public", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "public data", recorder.Body.String())
}
