package store

import (
	"context"
	"strings"
	"sync"

	"github.com/ncobase/taskdesk/biz/task/data/repository"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/logging/observes"
	"github.com/ncobase/taskdesk/types"
	"go.opentelemetry.io/otel/attribute"
)

// SessionCloser ends a signed-in session.
type SessionCloser interface {
	SignOut(ctx context.Context, sessionID string) error
}

// Principal identifies the signed-in user a Remote store works for.
type Principal struct {
	UserID    string
	SessionID string
}

// Remote mirrors one user's rows from a repository. Mutations hold the
// operation lock across the backend call, so a second mutation waits for
// the first to be confirmed or rejected. The copy changes only after the
// backend answers.
type Remote struct {
	op sync.Mutex

	mu        sync.RWMutex
	principal Principal
	tasks     []structs.RemoteTask

	repo     repository.Repository
	sessions SessionCloser
	notifier Notifier
	clock    types.Clock
}

// NewRemote returns a store with no principal. Load must run before any
// mutation.
func NewRemote(repo repository.Repository, sessions SessionCloser, n Notifier, clock types.Clock) *Remote {
	if n == nil {
		n = Discard
	}
	if clock == nil {
		clock = types.SystemClock
	}
	return &Remote{repo: repo, sessions: sessions, notifier: n, clock: clock}
}

// Principal returns the user the store currently mirrors.
func (r *Remote) Principal() Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.principal
}

// Tasks returns a snapshot of the rows, newest first.
func (r *Remote) Tasks() []structs.RemoteTask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]structs.RemoteTask(nil), r.tasks...)
}

// Load fetches every row of p and replaces the collection. A failed load
// for a different principal leaves an empty collection for p. Success is
// silent.
func (r *Remote) Load(ctx context.Context, p Principal) error {
	r.op.Lock()
	defer r.op.Unlock()

	ctx, span := observes.StartSpan(ctx, observes.LayerService, "Remote.Load", attribute.String("user_id", p.UserID))
	var rows []structs.RemoteTask
	err := protect(func() (err error) {
		rows, err = r.repo.List(ctx, p.UserID)
		return err
	})
	observes.EndSpan(span, err)

	r.mu.Lock()
	if err != nil {
		if r.principal.UserID != p.UserID {
			r.tasks = nil
		}
		r.principal = p
		r.mu.Unlock()
		return r.fail(ctx, p.UserID, "load", "", &structs.PersistenceError{Op: "load", Err: err}, MsgLoadFailed)
	}
	r.principal, r.tasks = p, rows
	r.mu.Unlock()
	return nil
}

// Reload refetches the rows of the current principal.
func (r *Remote) Reload(ctx context.Context) error {
	p := r.Principal()
	if p.UserID == "" {
		return r.fail(ctx, "", "load", "", &structs.PersistenceError{Op: "load", Err: ErrNotAuthenticated}, MsgLoadFailed)
	}
	return r.Load(ctx, p)
}

// Create inserts a pending row for the principal and prepends the stored
// row. Empty description and due date are sent as null.
func (r *Remote) Create(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	r.op.Lock()
	defer r.op.Unlock()

	p := r.Principal()
	if p.UserID == "" {
		return structs.RemoteTask{}, r.fail(ctx, "", "create", "", &structs.PersistenceError{Op: "create", Err: ErrNotAuthenticated}, MsgCreateFailed)
	}
	in, err := normalizeInput(in)
	if err != nil {
		return structs.RemoteTask{}, r.fail(ctx, p.UserID, "create", "", err, MsgCreateFailed)
	}
	in.UserID, in.Status = p.UserID, structs.StatusPending

	ctx, span := observes.StartSpan(ctx, observes.LayerService, "Remote.Create")
	var row structs.RemoteTask
	err = protect(func() (err error) {
		row, err = r.repo.Insert(ctx, in)
		return err
	})
	observes.EndSpan(span, err)
	if err != nil {
		return structs.RemoteTask{}, r.fail(ctx, p.UserID, "create", "", &structs.PersistenceError{Op: "create", Err: err}, MsgCreateFailed)
	}

	r.mu.Lock()
	r.tasks = append([]structs.RemoteTask{row}, r.tasks...)
	r.mu.Unlock()

	r.succeed(ctx, p.UserID, MsgCreated)
	return row, nil
}

// Update patches the row with id and replaces it with the stored row.
func (r *Remote) Update(ctx context.Context, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	r.op.Lock()
	defer r.op.Unlock()

	row, err := r.update(ctx, "update", id, patch)
	if err != nil {
		return structs.RemoteTask{}, r.fail(ctx, r.Principal().UserID, "update", id, err, MsgUpdateFailed)
	}
	r.succeed(ctx, row.UserID, MsgUpdated)
	return row, nil
}

// SetStatus changes the status of the row with id.
func (r *Remote) SetStatus(ctx context.Context, id string, status structs.RemoteStatus) (structs.RemoteTask, error) {
	r.op.Lock()
	defer r.op.Unlock()

	row, err := r.update(ctx, "set status", id, structs.RemoteTaskPatch{Status: &status})
	if err != nil {
		return structs.RemoteTask{}, r.fail(ctx, r.Principal().UserID, "set status", id, err, MsgUpdateFailed)
	}
	r.succeed(ctx, row.UserID, statusMessage(string(row.Status)))
	return row, nil
}

// Toggle flips the row with id between pending and completed. The row
// must be in the loaded collection.
func (r *Remote) Toggle(ctx context.Context, id string) (structs.RemoteTask, error) {
	r.op.Lock()
	defer r.op.Unlock()

	current, ok := r.find(id)
	if !ok {
		return structs.RemoteTask{}, r.fail(ctx, r.Principal().UserID, "toggle", id, &structs.NotFoundError{ID: id}, MsgUpdateFailed)
	}
	next := current.Status.Toggle()
	row, err := r.update(ctx, "toggle", id, structs.RemoteTaskPatch{Status: &next})
	if err != nil {
		return structs.RemoteTask{}, r.fail(ctx, r.Principal().UserID, "toggle", id, err, MsgUpdateFailed)
	}
	r.succeed(ctx, row.UserID, statusMessage(string(row.Status)))
	return row, nil
}

// Delete removes the row with id once the backend confirms. A row the
// backend does not know is a PersistenceError.
func (r *Remote) Delete(ctx context.Context, id string) error {
	r.op.Lock()
	defer r.op.Unlock()

	p := r.Principal()
	if p.UserID == "" {
		return r.fail(ctx, "", "delete", id, &structs.PersistenceError{Op: "delete", Err: ErrNotAuthenticated}, MsgDeleteFailed)
	}

	ctx, span := observes.StartSpan(ctx, observes.LayerService, "Remote.Delete", attribute.String("task_id", id))
	err := protect(func() error { return r.repo.Delete(ctx, p.UserID, id) })
	observes.EndSpan(span, err)
	if err != nil {
		return r.fail(ctx, p.UserID, "delete", id, &structs.PersistenceError{Op: "delete", Err: err}, MsgDeleteFailed)
	}

	r.mu.Lock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.succeed(ctx, p.UserID, MsgDeleted)
	return nil
}

// SignOut ends the principal's session and clears the collection.
func (r *Remote) SignOut(ctx context.Context) error {
	r.op.Lock()
	defer r.op.Unlock()

	p := r.Principal()
	err := protect(func() error {
		if r.sessions == nil {
			return nil
		}
		return r.sessions.SignOut(ctx, p.SessionID)
	})
	if err != nil {
		return r.fail(ctx, p.UserID, "sign out", "", err, MsgUnexpected)
	}

	r.mu.Lock()
	r.principal, r.tasks = Principal{}, nil
	r.mu.Unlock()

	r.succeed(ctx, p.UserID, MsgSignedOut)
	return nil
}

// update validates the patch, sends it and swaps in the stored row. The
// caller holds the operation lock.
func (r *Remote) update(ctx context.Context, op, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	p := r.Principal()
	if p.UserID == "" {
		return structs.RemoteTask{}, &structs.PersistenceError{Op: op, Err: ErrNotAuthenticated}
	}
	patch, err := normalizePatch(patch)
	if err != nil {
		return structs.RemoteTask{}, err
	}

	ctx, span := observes.StartSpan(ctx, observes.LayerService, "Remote.Update", attribute.String("task_id", id))
	var row structs.RemoteTask
	err = protect(func() (err error) {
		row, err = r.repo.Update(ctx, p.UserID, id, patch)
		return err
	})
	observes.EndSpan(span, err)
	if err != nil {
		return structs.RemoteTask{}, &structs.PersistenceError{Op: op, Err: err}
	}

	r.mu.Lock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i] = row
			break
		}
	}
	r.mu.Unlock()
	return row, nil
}

func (r *Remote) find(id string) (structs.RemoteTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return structs.RemoteTask{}, false
}

func (r *Remote) succeed(ctx context.Context, topic, msg string) {
	r.notifier.Notify(ctx, newNotification(topic, structs.LevelSuccess, msg, r.clock.Now()))
}

func (r *Remote) fail(ctx context.Context, topic, op, id string, err error, fallback string) error {
	logger.Warn(ctx, "task operation failed", "op", op, "user_id", topic, "task_id", id, "error", err)
	r.notifier.Notify(ctx, newNotification(topic, structs.LevelError, failureMessage(err, fallback), r.clock.Now()))
	return err
}

// normalizeInput trims the input, turns blank optional fields into nil and
// checks the title and due date.
func normalizeInput(in structs.RemoteTaskInput) (structs.RemoteTaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = blankToNil(in.Description)
	in.DueDate = blankToNil(in.DueDate)

	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "title is required"
	}
	if in.DueDate != nil && !structs.ValidDate(*in.DueDate) {
		fields["due_date"] = "due_date must be a date"
	}
	if len(fields) > 0 {
		return in, &structs.ValidationError{Fields: fields}
	}
	return in, nil
}

// normalizePatch applies the same rules to the fields a patch sets. An
// empty description or due date clears the column.
func normalizePatch(p structs.RemoteTaskPatch) (structs.RemoteTaskPatch, error) {
	fields := map[string]string{}
	if p.Empty() {
		fields["_"] = "nothing to update"
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
		if title == "" {
			fields["title"] = "title is required"
		}
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	if p.DueDate != nil {
		d := strings.TrimSpace(*p.DueDate)
		p.DueDate = &d
		if d != "" && !structs.ValidDate(d) {
			fields["due_date"] = "due_date must be a date"
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		fields["status"] = "status must be one of [pending completed]"
	}
	if len(fields) > 0 {
		return p, &structs.ValidationError{Fields: fields}
	}
	return p, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
