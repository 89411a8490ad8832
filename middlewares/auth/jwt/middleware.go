// Package jwt gates requests on a valid bearer token. Paths matching the
// configured exemption patterns pass through unchecked.
package jwt

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foyerweb/foyer"
	"github.com/foyerweb/foyer/internal/errs"
)

// ClaimsKey is where validated claims are stored on the Context for
// downstream handlers.
const ClaimsKey = "jwt-claims"

type MiddlewareBuilder struct {
	StatusCode int
	ErrMsg     string
	LogFunc    func(ctx *foyer.Context, msg string)
	Secret     []byte
	Paths      []*regexp.Regexp
}

// NewMiddlewareBuilder compiles the exemption patterns and returns the
// builder. secret signs and validates tokens with HMAC; pathPatterns are
// regular expressions matched against the request path.
func NewMiddlewareBuilder(secret []byte, pathPatterns []string) (*MiddlewareBuilder, error) {
	paths := make([]*regexp.Regexp, 0, len(pathPatterns))
	for _, pattern := range pathPatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile path pattern %q: %w", pattern, err)
		}
		paths = append(paths, compiled)
	}

	return &MiddlewareBuilder{
		Secret:     secret,
		StatusCode: http.StatusUnauthorized,
		ErrMsg:     "authentication error",
		LogFunc: func(ctx *foyer.Context, msg string) {
			foyer.GetDefaultLogger().Debug("request %s: %s", ctx.RequestID, msg)
		},
		Paths: paths,
	}, nil
}

func (m *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			for _, pattern := range m.Paths {
				if pattern.MatchString(ctx.Request.URL.Path) {
					next(ctx)
					return
				}
			}
			if err := m.validateToken(ctx); err != nil {
				m.LogFunc(ctx, "token validation failed: "+err.Error())
				ctx.RespStatusCode = m.StatusCode
				ctx.RespData = errs.NewAuthError(m.ErrMsg).ToJSON()
				ctx.Abort()
				return
			}
			next(ctx)
		}
	}
}

func (m *MiddlewareBuilder) validateToken(ctx *foyer.Context) error {
	header := ctx.Request.Header.Get("Authorization")
	if header == "" {
		return fmt.Errorf("missing Authorization header")
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return fmt.Errorf("Authorization header is not a bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		ctx.Set(ClaimsKey, claims)
	}
	return nil
}
