// Package handler exposes authentication HTTP endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/core/auth/middleware"
	"github.com/ncobase/taskdesk/core/auth/service"
	"github.com/ncobase/taskdesk/core/auth/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/net/resp"
	"github.com/ncobase/taskdesk/validation/validator"
)

// SignOutFunc ends the session of a signed-in user.
type SignOutFunc func(ctx context.Context, userID, sessionID string) error

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	svc     *service.Service
	signOut SignOutFunc
}

// NewAuthHandler creates a new auth handler. A nil signOut closes the
// session through the service directly.
func NewAuthHandler(svc *service.Service, signOut SignOutFunc) *AuthHandler {
	if signOut == nil {
		signOut = func(ctx context.Context, _, sessionID string) error {
			return svc.SignOut(ctx, sessionID)
		}
	}
	return &AuthHandler{svc: svc, signOut: signOut}
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var body structs.RegisterBody
	if !bind(c, &body) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), body.Email, body.Password)
	switch {
	case errors.Is(err, structs.ErrEmailTaken):
		resp.Fail(c.Writer, resp.Conflict(err.Error()))
	case err != nil:
		logger.Error(c.Request.Context(), "Register failed", "error", err)
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
	default:
		resp.WithStatusCode(c.Writer, http.StatusCreated, user)
	}
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var body structs.LoginBody
	if !bind(c, &body) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	switch {
	case errors.Is(err, structs.ErrInvalidCredentials):
		resp.Fail(c.Writer, resp.UnAuthorized("invalid credentials"))
	case err != nil:
		logger.Error(c.Request.Context(), "Login failed", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("login failed"))
	default:
		resp.Success(c.Writer, tokens)
	}
}

// Logout ends the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	sessionID, ok := middleware.GetCurrentSessionID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("unauthorized"))
		return
	}

	if err := h.signOut(c.Request.Context(), userID, sessionID); err != nil {
		resp.Fail(c.Writer, resp.InternalServer("logout failed"))
		return
	}
	resp.Success(c.Writer, "Signed out successfully!")
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("unauthorized"))
		return
	}

	user, err := h.svc.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		resp.Fail(c.Writer, resp.NotFound("user not found"))
		return
	}
	resp.Success(c.Writer, user)
}

func bind(c *gin.Context, obj any) bool {
	fields, err := validator.ShouldBindAndValidateStruct(c, obj)
	if err != nil {
		resp.Fail(c.Writer, resp.BadRequest("malformed request body"))
		return false
	}
	if len(fields) > 0 {
		resp.Fail(c.Writer, resp.BadRequest("invalid request", fields))
		return false
	}
	return true
}
