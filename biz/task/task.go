// Package task wires the local board and the signed-in task board.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/biz/task/data/repository"
	"github.com/ncobase/taskdesk/biz/task/service"
	"github.com/ncobase/taskdesk/biz/task/store"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/types"
)

// Options are the collaborators of the task module.
type Options struct {
	Board    *config.Board
	Backend  *config.Backend
	Data     *data.Data
	Notifier store.Notifier
	Sessions store.SessionCloser
	Clock    types.Clock
	// SessionTTL is the access token lifetime. Task stores idle for longer
	// are evicted.
	SessionTTL time.Duration
	// Migrate creates the backend table when the sql backend is used.
	Migrate bool
}

// Module holds both boards and their handlers.
type Module struct {
	Board     *store.Local
	Backend   *repository.Breaker
	Workspace *service.Workspace

	board *service.Board
	tasks *service.Tasks
}

// New builds the module.
func New(ctx context.Context, opts Options) (*Module, error) {
	clock := opts.Clock
	if clock == nil {
		clock = types.SystemClock
	}
	if opts.Board != nil && opts.Board.Location != "" {
		loc, err := time.LoadLocation(opts.Board.Location)
		if err != nil {
			return nil, fmt.Errorf("board location: %w", err)
		}
		clock = types.InLocation(clock, loc)
	}

	backend, err := repository.Open(ctx, opts.Backend, opts.Data, opts.Migrate, clock)
	if err != nil {
		return nil, err
	}

	localOpts := []store.LocalOption{store.WithClock(clock)}
	if opts.Board == nil || opts.Board.Seed {
		localOpts = append(localOpts, store.WithTasks(structs.SampleTasks()))
	}
	board := store.NewLocal(opts.Notifier, localOpts...)
	ws := service.NewWorkspace(backend, opts.Sessions, opts.Notifier, clock, opts.SessionTTL)

	logger.Info(ctx, "Task module initialized",
		"board_tasks", len(board.Tasks()),
		"backend", backend.Name())

	return &Module{
		Board:     board,
		Backend:   backend,
		Workspace: ws,
		board:     service.NewBoard(board, clock),
		tasks:     service.NewTasks(ws, board, clock),
	}, nil
}

// SignOut ends a session through the user's task store.
func (m *Module) SignOut(ctx context.Context, userID, sessionID string) error {
	return m.Workspace.SignOut(ctx, userID, sessionID)
}

// RegisterRoutes mounts the board under /board and the signed-in board
// under /tasks behind authed.
func (m *Module) RegisterRoutes(r *gin.RouterGroup, authed gin.HandlerFunc) {
	board := r.Group("/board")
	{
		board.GET("/tasks", m.board.List)
		board.POST("/tasks", m.board.Create)
		board.PUT("/tasks/:id", m.board.Update)
		board.PATCH("/tasks/:id/status", m.board.SetStatus)
		board.POST("/tasks/:id/toggle", m.board.Toggle)
		board.DELETE("/tasks/:id", m.board.Delete)
		board.GET("/draft", m.board.Draft)
		board.GET("/team", m.board.Team)
	}

	tasks := r.Group("/tasks", authed)
	{
		tasks.GET("", m.tasks.List)
		tasks.POST("", m.tasks.Create)
		tasks.POST("/reload", m.tasks.Reload)
		tasks.POST("/from-board/:id", m.tasks.CopyFromBoard)
		tasks.PUT("/:id", m.tasks.Update)
		tasks.PATCH("/:id/status", m.tasks.SetStatus)
		tasks.POST("/:id/toggle", m.tasks.Toggle)
		tasks.DELETE("/:id", m.tasks.Delete)
	}
}
