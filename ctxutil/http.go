package ctxutil

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/consts"
)

const unknown = "unknown"

// SetSessionID records the session the bearer token belongs to.
func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return SetValue(ctx, consts.SessionKey, sessionID)
}

// GetSessionID returns the current session or "".
func GetSessionID(ctx context.Context) string { return stringValue(ctx, consts.SessionKey) }

// GetClientIP reports the caller's address as seen through proxies, or
// "unknown" outside a request.
func GetClientIP(ctx context.Context) string {
	c, ok := GetGinContext(ctx)
	if !ok {
		return unknown
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := c.GetHeader("X-Real-IP"); net.ParseIP(ip) != nil {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return remoteHost(c)
}

// GetUserAgent returns the request's User-Agent or "unknown".
func GetUserAgent(ctx context.Context) string {
	if c, ok := GetGinContext(ctx); ok {
		if ua := c.GetHeader("User-Agent"); ua != "" {
			return ua
		}
	}
	return unknown
}

func remoteHost(c *gin.Context) string {
	if c.Request == nil {
		return unknown
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return unknown
}
