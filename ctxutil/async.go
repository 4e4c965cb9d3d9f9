package ctxutil

import (
	"context"
	"time"
)

// DefaultAsyncTimeout bounds work handed off from a request, such as
// notification delivery.
const DefaultAsyncTimeout = 5 * time.Second

// WithAsyncContext detaches from parent's cancellation while keeping its
// values (trace id, user), then applies timeout. A zero timeout means
// DefaultAsyncTimeout.
func WithAsyncContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultAsyncTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
