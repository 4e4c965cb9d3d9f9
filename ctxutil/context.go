package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ncobase/taskdesk/consts"
)

// TraceIDKey is the key the trace id is stored under.
const TraceIDKey = "trace_id"

// WithGinContext embeds c so later Set calls reach gin's key store too.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, consts.GinContextKey, c)
}

// GetGinContext returns the embedded *gin.Context, if any.
func GetGinContext(ctx context.Context) (*gin.Context, bool) {
	c, ok := ctx.Value(consts.GinContextKey).(*gin.Context)
	return c, ok
}

// GetValue reads key from the embedded gin context first, then from ctx.
func GetValue(ctx context.Context, key string) any {
	if c, ok := GetGinContext(ctx); ok {
		if val, exists := c.Get(key); exists {
			return val
		}
	}
	return ctx.Value(key)
}

// SetValue stores val on ctx and on the embedded gin context.
func SetValue(ctx context.Context, key string, val any) context.Context {
	if c, ok := GetGinContext(ctx); ok {
		c.Set(key, val)
	}
	return context.WithValue(ctx, key, val)
}

func stringValue(ctx context.Context, key string) string {
	s, _ := GetValue(ctx, key).(string)
	return s
}

// SetUserID records the signed-in user.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, consts.UserKey, uid)
}

// GetUserID returns the signed-in user or "".
func GetUserID(ctx context.Context) string { return stringValue(ctx, consts.UserKey) }

// SetUserEmail records the signed-in user's email.
func SetUserEmail(ctx context.Context, email string) context.Context {
	return SetValue(ctx, consts.UserEmailKey, email)
}

// GetUserEmail returns the signed-in user's email or "".
func GetUserEmail(ctx context.Context) string { return stringValue(ctx, consts.UserEmailKey) }

// SetToken records the raw bearer token.
func SetToken(ctx context.Context, token string) context.Context {
	return SetValue(ctx, consts.TokenKey, token)
}

// GetToken returns the raw bearer token or "".
func GetToken(ctx context.Context) string { return stringValue(ctx, consts.TokenKey) }

// SetTraceID records the request's trace id.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the request's trace id or "".
func GetTraceID(ctx context.Context) string { return stringValue(ctx, TraceIDKey) }

// EnsureTraceID returns ctx unchanged when it carries a trace id, otherwise
// a copy with a fresh uuid.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
