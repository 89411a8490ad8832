// Package casbin authorizes requests against a casbin policy: the subject
// is resolved from the request, the object is the request path and the
// action the HTTP method. The policy file is watched and reloaded on
// change.
package casbin

import (
	"net/http"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/foyerweb/foyer"
	"github.com/foyerweb/foyer/internal/errs"
)

// SubResolver extracts the policy subject (user, role, api key owner) from
// the request.
type SubResolver func(*http.Request) (string, error)

type MiddlewareBuilder struct {
	enforcer    *casbin.Enforcer
	subResolver SubResolver
	policyFile  string
	watcher     *fsnotify.Watcher
	mu          sync.RWMutex
}

// InitMiddlewareBuilder loads the casbin model and policy and starts
// watching the policy file so edits take effect without a restart.
func InitMiddlewareBuilder(modelFile, policyFile string, subResolver SubResolver) (*MiddlewareBuilder, error) {
	enforcer, err := casbin.NewEnforcer(modelFile, policyFile)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(policyFile); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	b := &MiddlewareBuilder{
		enforcer:    enforcer,
		subResolver: subResolver,
		policyFile:  policyFile,
		watcher:     watcher,
	}
	go b.watchPolicyFile()
	return b, nil
}

// Close stops the policy file watcher.
func (b *MiddlewareBuilder) Close() error {
	return b.watcher.Close()
}

func (b *MiddlewareBuilder) watchPolicyFile() {
	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				b.mu.Lock()
				if err := b.enforcer.LoadPolicy(); err != nil {
					foyer.GetDefaultLogger().Error("failed to reload casbin policy: %v", err)
				}
				b.mu.Unlock()
			}
		case _, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (b *MiddlewareBuilder) Build() foyer.Middleware {
	return func(next foyer.HandleFunc) foyer.HandleFunc {
		return func(ctx *foyer.Context) {
			sub, err := b.subResolver(ctx.Request)
			if err != nil {
				ctx.RespStatusCode = http.StatusUnauthorized
				ctx.RespData = errs.NewAuthError("could not identify caller").ToJSON()
				ctx.Abort()
				return
			}

			b.mu.RLock()
			allowed, err := b.enforcer.Enforce(sub, ctx.Request.URL.Path, ctx.Request.Method)
			b.mu.RUnlock()

			if err != nil || !allowed {
				ctx.RespStatusCode = http.StatusForbidden
				ctx.RespData = errs.NewPermissionError("access denied").ToJSON()
				ctx.Abort()
				return
			}
			next(ctx)
		}
	}
}
