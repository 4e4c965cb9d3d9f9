// Package middleware resolves the signed-in user of a request.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/consts"
	"github.com/ncobase/taskdesk/core/auth/structs"
	"github.com/ncobase/taskdesk/ctxutil"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/net/resp"
)

// Authenticator resolves an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*structs.Identity, error)
}

// Authenticate requires a valid bearer token. Paths starting with one of
// whitelist pass through untouched. The identity is stored on both the
// gin context and the request context.
func Authenticate(a Authenticator, whitelist ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range whitelist {
			if prefix != "" && strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok {
			resp.Fail(c.Writer, resp.UnAuthorized("missing or malformed authorization header"))
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		identity, err := a.Authenticate(ctx, token)
		if err != nil {
			logger.Warn(ctx, "Token rejected", "error", err)
			resp.Fail(c.Writer, resp.UnAuthorized("invalid or expired token"))
			c.Abort()
			return
		}

		ctx = ctxutil.SetUserID(ctx, identity.UserID)
		ctx = ctxutil.SetUserEmail(ctx, identity.Email)
		ctx = ctxutil.SetSessionID(ctx, identity.SessionID)
		ctx = ctxutil.SetToken(ctx, identity.Token)
		c.Request = c.Request.WithContext(ctx)

		c.Set(consts.UserKey, identity.UserID)
		c.Set(consts.UserEmailKey, identity.Email)
		c.Set(consts.SessionKey, identity.SessionID)
		c.Set(consts.TokenKey, identity.Token)

		c.Next()
	}
}

// bearerToken reads the token from the Authorization header. Websocket
// clients that cannot set headers may pass it as the access_token query
// parameter.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(consts.AuthorizationKey)
	if header == "" {
		if token := c.Query("access_token"); token != "" {
			return token, true
		}
		return "", false
	}
	if len(header) <= len(consts.BearerKey) || !strings.EqualFold(header[:len(consts.BearerKey)], consts.BearerKey) {
		return "", false
	}
	return strings.TrimSpace(header[len(consts.BearerKey):]), true
}

// GetCurrentUserID retrieves the current user ID from context.
func GetCurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(consts.UserKey)
	return userID, userID != ""
}

// GetCurrentSessionID retrieves the current session ID from context.
func GetCurrentSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(consts.SessionKey)
	return sessionID, sessionID != ""
}
