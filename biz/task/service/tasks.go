package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/biz/task/form"
	"github.com/ncobase/taskdesk/biz/task/query"
	"github.com/ncobase/taskdesk/biz/task/store"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/core/auth/middleware"
	"github.com/ncobase/taskdesk/net/resp"
	"github.com/ncobase/taskdesk/types"
)

// TasksView is the listing of the signed-in user's tasks.
type TasksView struct {
	Tasks []structs.RemoteTask `json:"tasks"`
	Stats query.RemoteStats    `json:"stats"`
}

// Tasks handles the signed-in board endpoints. Routes must sit behind the
// auth middleware.
type Tasks struct {
	ws    *Workspace
	board *store.Local
	clock types.Clock
}

// NewTasks creates the signed-in board handlers. board is the source of
// CopyFromBoard.
func NewTasks(ws *Workspace, board *store.Local, clock types.Clock) *Tasks {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Tasks{ws: ws, board: board, clock: clock}
}

// remote resolves the caller's store. It answers the request itself and
// returns nil when that fails.
func (h *Tasks) remote(c *gin.Context) *store.Remote {
	userID, _ := middleware.GetCurrentUserID(c)
	sessionID, _ := middleware.GetCurrentSessionID(c)
	if userID == "" || sessionID == "" {
		resp.Fail(c.Writer, resp.UnAuthorized("unauthorized"))
		return nil
	}

	s, err := h.ws.For(c.Request.Context(), store.Principal{UserID: userID, SessionID: sessionID})
	if err != nil {
		fail(c, err)
		return nil
	}
	return s
}

// List returns the caller's tasks, newest first unless a sort is given.
// Board filters apply through the adapter shape and keep that order.
func (h *Tasks) List(c *gin.Context) {
	var q structs.BoardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		malformed(c, err)
		return
	}
	s := h.remote(c)
	if s == nil {
		return
	}
	h.list(c, s, q)
}

func (h *Tasks) list(c *gin.Context, s *store.Remote, q structs.BoardQuery) {
	all := s.Tasks()
	tasks := all
	switch f := q.Filters(); {
	case q.SortBy != "":
		tasks = query.ApplyRemote(all, f, q.Sort())
	case f.Active():
		tasks = query.FilterRemote(all, f)
	}
	resp.Success(c.Writer, &TasksView{
		Tasks: tasks,
		Stats: query.SummarizeRemote(all, h.clock.Now()),
	})
}

// Create inserts a task from the short form.
func (h *Tasks) Create(c *gin.Context) {
	var draft structs.RemoteTaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		malformed(c, err)
		return
	}
	s := h.remote(c)
	if s == nil {
		return
	}

	f := form.NewRemote()
	f.Apply(draft)
	row, err := s.Create(c.Request.Context(), f.Input())
	if err != nil {
		fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, row)
}

// CopyFromBoard adds the board task with the given id to the caller's
// tasks. A closed board task arrives completed.
func (h *Tasks) CopyFromBoard(c *gin.Context) {
	s := h.remote(c)
	if s == nil {
		return
	}
	ctx := c.Request.Context()
	t, err := h.board.Get(c.Param("id"))
	if err != nil {
		fail(c, h.board.Reject(ctx, "copy", c.Param("id"), err))
		return
	}

	in := structs.ToRemote(t, s.Principal().UserID)
	row, err := s.Create(ctx, in)
	if err != nil {
		fail(c, err)
		return
	}
	if in.Status == structs.StatusCompleted {
		if row, err = s.SetStatus(ctx, row.ID, in.Status); err != nil {
			fail(c, err)
			return
		}
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, row)
}

// Update patches a task.
func (h *Tasks) Update(c *gin.Context) {
	var patch structs.RemoteTaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		malformed(c, err)
		return
	}
	s := h.remote(c)
	if s == nil {
		return
	}

	row, err := s.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, row)
}

// SetStatus marks a task pending or completed.
func (h *Tasks) SetStatus(c *gin.Context) {
	var body structs.StatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		malformed(c, err)
		return
	}
	s := h.remote(c)
	if s == nil {
		return
	}

	row, err := s.SetStatus(c.Request.Context(), c.Param("id"), structs.RemoteStatus(body.Status))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, row)
}

// Toggle flips a task between pending and completed.
func (h *Tasks) Toggle(c *gin.Context) {
	s := h.remote(c)
	if s == nil {
		return
	}
	row, err := s.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, row)
}

// Delete removes a task.
func (h *Tasks) Delete(c *gin.Context) {
	s := h.remote(c)
	if s == nil {
		return
	}
	if err := s.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, store.MsgDeleted)
}

// Reload refetches the caller's tasks and returns the fresh listing.
func (h *Tasks) Reload(c *gin.Context) {
	s := h.remote(c)
	if s == nil {
		return
	}
	if err := s.Reload(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	h.list(c, s, structs.BoardQuery{})
}
