package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/consts"
	"github.com/ncobase/taskdesk/ctxutil"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/logging/observes"
	"go.opentelemetry.io/otel/attribute"
)

// traceMiddleware starts a handler span and makes sure the request carries
// a trace id, taken from the X-Trace-Id header, the span or a new uuid.
func traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithGinContext(c.Request.Context(), c)
		ctx, span := observes.StartSpan(ctx, observes.LayerHandler, c.Request.Method+" "+c.FullPath(),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
		)

		traceID := c.GetHeader(consts.TraceKey)
		if traceID == "" {
			traceID = observes.TraceID(ctx)
		}
		if traceID != "" {
			ctx = ctxutil.SetTraceID(ctx, traceID)
		} else {
			ctx, traceID = ctxutil.EnsureTraceID(ctx)
		}
		c.Header(consts.TraceKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		observes.EndSpan(span, err)
	}
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start).String(),
			"client_ip", ctxutil.GetClientIP(c.Request.Context()),
		}
		switch {
		case status >= 500:
			logger.Error(c.Request.Context(), "HTTP request", fields...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "HTTP request", fields...)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields...)
		}
	}
}
