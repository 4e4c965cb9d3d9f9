// Package auth wires accounts, sessions and the bearer token middleware.
package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/core/auth/data/repository"
	"github.com/ncobase/taskdesk/core/auth/handler"
	"github.com/ncobase/taskdesk/core/auth/middleware"
	"github.com/ncobase/taskdesk/core/auth/service"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/logging/logger"
	securityjwt "github.com/ncobase/taskdesk/security/jwt"
	"github.com/ncobase/taskdesk/types"
)

// Module holds the auth service and its HTTP surface.
type Module struct {
	Service   *service.Service
	whitelist []string
}

// New builds the module. Users and sessions go to the SQL database when
// one is configured and stay in memory otherwise; redis, when present,
// records revoked tokens.
func New(ctx context.Context, conf *config.Auth, d *data.Data, migrate bool, clock types.Clock) (*Module, error) {
	if conf == nil || conf.JWT == nil || conf.JWT.Secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}

	var (
		users    repository.UserRepository
		sessions repository.SessionRepository
	)
	if d != nil && d.DB != nil {
		var err error
		users, sessions, err = repository.NewSQLRepositories(ctx, d.DB, d.Dialect, migrate)
		if err != nil {
			return nil, err
		}
	} else {
		mem := repository.NewMemory()
		users, sessions = mem.Users(), mem.Sessions()
		logger.Warn(ctx, "No database configured, accounts are kept in memory")
	}

	var revocation repository.Revocation
	if d != nil && d.Redis != nil {
		revocation = repository.NewRedisRevocation(d.Redis)
	}

	tm := securityjwt.NewTokenManager(conf.JWT.Secret, conf.JWT.Expire)
	return &Module{
		Service:   service.NewService(users, sessions, revocation, tm, clock),
		whitelist: conf.Whitelist,
	}, nil
}

// Middleware requires a valid bearer token.
func (m *Module) Middleware() gin.HandlerFunc {
	return middleware.Authenticate(m.Service, m.whitelist...)
}

// RegisterRoutes mounts the auth endpoints on r. signOut replaces the
// plain session close, e.g. to also clear the user's task store.
func (m *Module) RegisterRoutes(r *gin.RouterGroup, signOut handler.SignOutFunc) {
	h := handler.NewAuthHandler(m.Service, signOut)
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	authed := g.Group("", m.Middleware())
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)
}
