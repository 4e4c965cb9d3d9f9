// Package service exposes the task boards over HTTP.
//
// Board serves the shared local board. Tasks serves the signed-in user's
// persisted tasks through a Workspace of per-session remote stores.
package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/biz/task/form"
	"github.com/ncobase/taskdesk/biz/task/query"
	"github.com/ncobase/taskdesk/biz/task/store"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/net/resp"
	"github.com/ncobase/taskdesk/types"
)

// BoardView is the listing of the local board. Stats always cover the
// whole board; tasks are filtered and sorted.
type BoardView struct {
	Tasks         []structs.Task        `json:"tasks"`
	Stats         query.Stats           `json:"stats"`
	TeamMembers   []string              `json:"teamMembers"`
	Filters       structs.FilterOptions `json:"filters"`
	FiltersActive bool                  `json:"filtersActive"`
	Sort          structs.SortOption    `json:"sort"`
}

// DraftView is a form draft and the choices offered for it.
type DraftView struct {
	Mode        string             `json:"mode"`
	Draft       structs.Task       `json:"draft"`
	TaskTypes   []structs.TaskType `json:"taskTypes"`
	TeamMembers []string           `json:"teamMembers"`
}

// Board handles the local board endpoints.
type Board struct {
	store *store.Local
	clock types.Clock
}

// NewBoard creates the board handlers.
func NewBoard(s *store.Local, clock types.Clock) *Board {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Board{store: s, clock: clock}
}

// List returns the filtered and sorted board.
func (b *Board) List(c *gin.Context) {
	var q structs.BoardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		malformed(c, err)
		return
	}

	all := b.store.Tasks()
	filters, sort := q.Filters(), q.Sort()
	resp.Success(c.Writer, &BoardView{
		Tasks:         query.Apply(all, filters, sort),
		Stats:         query.Summarize(all, b.clock.Now()),
		TeamMembers:   query.TeamMembers(all),
		Filters:       filters,
		FiltersActive: filters.Active(),
		Sort:          sort,
	})
}

// Draft returns a create draft, or an edit draft of the task named by
// the id query parameter.
func (b *Board) Draft(c *gin.Context) {
	f := form.New(b.clock)
	if id := c.Query("id"); id != "" {
		t, err := b.store.Get(id)
		if err != nil {
			resp.Fail(c.Writer, resp.NotFound(store.MsgNotFound))
			return
		}
		f.OpenEdit(t)
	}
	resp.Success(c.Writer, &DraftView{
		Mode:        f.Mode().String(),
		Draft:       f.Draft(),
		TaskTypes:   structs.TaskTypes,
		TeamMembers: structs.DefaultTeamMembers,
	})
}

// Create adds a task. Fields left out take the create draft defaults.
func (b *Board) Create(c *gin.Context) {
	var in structs.Task
	if err := c.ShouldBindJSON(&in); err != nil {
		malformed(c, err)
		return
	}

	f := form.New(b.clock)
	f.Apply(in)
	draft, err := f.Submit()
	if err != nil {
		fail(c, b.store.Reject(c.Request.Context(), "create", "", err))
		return
	}
	t, err := b.store.Create(c.Request.Context(), draft)
	if err != nil {
		fail(c, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, t)
}

// Update opens the task in an edit draft, merges the body into it and
// saves the submitted draft over the stored task.
func (b *Board) Update(c *gin.Context) {
	var patch structs.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		malformed(c, err)
		return
	}

	ctx, id := c.Request.Context(), c.Param("id")
	current, err := b.store.Get(id)
	if err != nil {
		fail(c, b.store.Reject(ctx, "update", id, err))
		return
	}
	f := form.New(b.clock)
	f.OpenEdit(current)
	f.Patch(patch)
	draft, err := f.Submit()
	if err != nil {
		fail(c, b.store.Reject(ctx, "update", id, err))
		return
	}

	t, err := b.store.Update(ctx, id, structs.PatchFrom(draft))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, t)
}

// SetStatus opens or closes the task.
func (b *Board) SetStatus(c *gin.Context) {
	var body structs.StatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		malformed(c, err)
		return
	}

	t, err := b.store.SetStatus(c.Request.Context(), c.Param("id"), structs.Status(body.Status))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, t)
}

// Toggle flips the task between open and closed.
func (b *Board) Toggle(c *gin.Context) {
	t, err := b.store.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, t)
}

// Delete removes the task.
func (b *Board) Delete(c *gin.Context) {
	if err := b.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	resp.Success(c.Writer, store.MsgDeleted)
}

// Team returns the contact person choices.
func (b *Board) Team(c *gin.Context) {
	resp.Success(c.Writer, structs.DefaultTeamMembers)
}
