package errs

import (
	"errors"
	"fmt"
)

var (
	// context errors
	errInputNil = errors.New("web: input cannot be nil")
	errBodyNil  = errors.New("web: request body is nil")
	errKeyNil   = errors.New("web: key does not exist")

	// router errors
	errPathEmpty           = errors.New("web: route path cannot be empty")
	errPathNoLeadingSlash  = errors.New("web: route path must begin with '/'")
	errPathTrailingSlash   = errors.New("web: route path must not end with '/'")
	errRendererMissing     = errors.New("web: no template engine configured")
	ErrUnroutableRequest   = errors.New("web: no handler registered for request path")
	ErrDefaultHandlerUnset = errors.New("web: default handler is not set")
	ErrHandlerFailure      = errors.New("web: handler failed")
	ErrRenderFailure       = errors.New("web: render failed")
)

func ErrInputNil() error {
	return errInputNil
}

func ErrBodyNil() error {
	return errBodyNil
}

func ErrKeyNil() error {
	return errKeyNil
}

func ErrPathEmpty() error {
	return errPathEmpty
}

func ErrPathNoLeadingSlash() error {
	return errPathNoLeadingSlash
}

func ErrPathTrailingSlash() error {
	return errPathTrailingSlash
}

func ErrRendererMissing() error {
	return errRendererMissing
}

// ErrRouteDuplicate reports a second registration for an already claimed
// path. Matching is case-insensitive, so "/User" collides with "/user".
func ErrRouteDuplicate(method, path string) error {
	return fmt.Errorf("web: duplicate route [%s %s] (paths match case-insensitively)", method, path)
}

// WrapHandlerFailure tags a domain error raised inside a handler so the
// entry point can distinguish it from a render failure.
func WrapHandlerFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrHandlerFailure, err)
}

// WrapRenderFailure tags an error raised while turning a view result into
// output.
func WrapRenderFailure(view string, err error) error {
	return fmt.Errorf("%w: view %q: %w", ErrRenderFailure, view, err)
}
