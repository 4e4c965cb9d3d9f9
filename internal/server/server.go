// Package server assembles the HTTP server: data connections, the
// notification hub, accounts and both task boards.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/biz/task"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/core/auth"
	"github.com/ncobase/taskdesk/core/auth/middleware"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/internal/notify"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/types"
)

// Options tune how the server is built.
type Options struct {
	// Migrate creates missing tables on start.
	Migrate bool
	Clock   types.Clock
}

// Server owns every long-lived component.
type Server struct {
	config *config.Config
	data   *data.Data
	notify *notify.Service
	auth   *auth.Module
	tasks  *task.Module
	engine *gin.Engine

	cleanup func()
}

// New connects the configured data sources and builds the modules.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	d, cleanup, err := data.New(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to connect data sources: %w", err)
	}

	s := &Server{config: cfg, data: d, cleanup: cleanup}
	if err := s.build(ctx, opts); err != nil {
		cleanup()
		return nil, err
	}
	return s, nil
}

func (s *Server) build(ctx context.Context, opts Options) error {
	var err error
	if s.notify, err = notify.New(s.config.Notify, s.data); err != nil {
		return err
	}
	if s.auth, err = auth.New(ctx, s.config.Auth, s.data, opts.Migrate, opts.Clock); err != nil {
		return err
	}
	s.tasks, err = task.New(ctx, task.Options{
		Board:    s.config.Board,
		Backend:  s.config.Backend,
		Data:     s.data,
		Notifier: s.notify,
		Sessions: s.auth.Service,
		Clock:    opts.Clock,
		Migrate:  opts.Migrate,

		SessionTTL: s.config.Auth.JWT.Expire,
	})
	return err
}

// Handler returns the router, building it on first use.
func (s *Server) Handler() *gin.Engine {
	if s.engine == nil {
		s.engine = s.setupRouter()
	}
	return s.engine
}

func (s *Server) setupRouter() *gin.Engine {
	if s.config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), traceMiddleware(), loggerMiddleware())
	r.GET("/health", s.health)

	api := r.Group("/api")
	s.auth.RegisterRoutes(api, s.tasks.SignOut)
	s.tasks.RegisterRoutes(api, s.auth.Middleware())

	b := s.notify.Broadcaster
	api.GET("/board/notifications/ws", b.Serve(func(*gin.Context) string { return structs.BoardTopic }))
	api.GET("/notifications/ws", s.auth.Middleware(), b.Serve(func(c *gin.Context) string {
		id, _ := middleware.GetCurrentUserID(c)
		return id
	}))

	return r
}

// Start runs the notification workers until ctx ends or Close is called.
func (s *Server) Start(ctx context.Context) {
	workers := 0
	if s.config.Notify != nil {
		workers = s.config.Notify.Workers
	}
	s.notify.Start(ctx, workers)
}

// Close drains pending notifications and closes the data connections.
func (s *Server) Close(ctx context.Context) {
	if err := s.notify.Close(ctx); err != nil {
		logger.Warn(ctx, "Failed to drain notifications", "error", err)
	}
	if s.cleanup != nil {
		s.cleanup()
	}
}
