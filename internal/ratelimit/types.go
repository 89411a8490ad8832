package ratelimit

import "context"

// Limiter decides whether the action identified by key has exhausted its
// budget. Implementations choose the strategy — sliding window, token
// bucket, fixed window — and the backing store; the middleware layer only
// depends on this interface.
type Limiter interface {
	// Limit reports true when the request identified by key must be
	// rejected. The error is non-nil only when the decision itself could
	// not be made (e.g. the backing store is unreachable).
	Limit(ctx context.Context, key string) (bool, error)
}
