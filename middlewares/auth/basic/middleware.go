// Package basic implements HTTP Basic authentication checked against
// bcrypt digests, so the expected credentials never sit in memory in the
// clear.
package basic

import (
	"fmt"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/foyerweb/foyer"
	"github.com/foyerweb/foyer/internal/errs"
)

type MiddlewareBuilder struct {
	requiredUserHash     []byte
	requiredPasswordHash []byte
	realm                string
	paths                []*regexp.Regexp
}

// InitMiddlewareBuilder hashes the expected credentials and returns the
// builder. realm is echoed in the WWW-Authenticate challenge.
func InitMiddlewareBuilder(requiredUser, requiredPassword, realm string) (*MiddlewareBuilder, error) {
	userHash, err := bcrypt.GenerateFromPassword([]byte(requiredUser), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing user: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(requiredPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	return &MiddlewareBuilder{
		requiredUserHash:     userHash,
		requiredPasswordHash: passwordHash,
		realm:                realm,
	}, nil
}

// IgnorePaths exempts paths matching the given patterns from the check.
func (m *MiddlewareBuilder) IgnorePaths(pathPatterns []string) (*MiddlewareBuilder, error) {
	paths := make([]*regexp.Regexp, 0, len(pathPatterns))
	for _, pattern := range pathPatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile path pattern %q: %w", pattern, err)
		}
		paths = append(paths, compiled)
	}
	m.paths = paths
	return m, nil
}

func (m *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			for _, pattern := range m.paths {
				if pattern.MatchString(ctx.Request.URL.Path) {
					next(ctx)
					return
				}
			}

			user, password, ok := ctx.Request.BasicAuth()
			if !ok || !m.credentialsMatch(user, password) {
				ctx.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", m.realm))
				ctx.RespStatusCode = http.StatusUnauthorized
				ctx.RespData = errs.NewAuthError("authentication required").ToJSON()
				ctx.Abort()
				return
			}
			next(ctx)
		}
	}
}

func (m *MiddlewareBuilder) credentialsMatch(user, password string) bool {
	userErr := bcrypt.CompareHashAndPassword(m.requiredUserHash, []byte(user))
	passErr := bcrypt.CompareHashAndPassword(m.requiredPasswordHash, []byte(password))
	return userErr == nil && passErr == nil
}
