package store

import (
	"context"
	"sync"

	"github.com/ncobase/taskdesk/biz/task/form"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/types"
	"github.com/ncobase/taskdesk/utils"
)

// LocalOption configures a Local store.
type LocalOption func(*Local)

// WithClock sets the clock used for default creation dates and
// notification times.
func WithClock(c types.Clock) LocalOption {
	return func(l *Local) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithIDs sets the id generator for created tasks.
func WithIDs(next func() string) LocalOption {
	return func(l *Local) {
		if next != nil {
			l.nextID = next
		}
	}
}

// WithTasks seeds the collection.
func WithTasks(tasks []structs.Task) LocalOption {
	return func(l *Local) {
		l.tasks = append([]structs.Task(nil), tasks...)
	}
}

// Local is the board collection held in process memory. It is safe for
// concurrent use.
type Local struct {
	mu       sync.RWMutex
	tasks    []structs.Task
	notifier Notifier
	clock    types.Clock
	nextID   func() string
}

// NewLocal returns an empty board, or a seeded one with WithTasks.
func NewLocal(n Notifier, opts ...LocalOption) *Local {
	if n == nil {
		n = Discard
	}
	l := &Local{
		notifier: n,
		clock:    types.SystemClock,
		nextID:   utils.NanoID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tasks returns a snapshot of the collection in insertion order.
func (l *Local) Tasks() []structs.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]structs.Task(nil), l.tasks...)
}

// Get returns the task with id.
func (l *Local) Get(id string) (structs.Task, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexOf(id); i >= 0 {
		return l.tasks[i], nil
	}
	return structs.Task{}, &structs.NotFoundError{ID: id}
}

// Create validates t, gives it a fresh id and appends it. An empty
// creation date defaults to today and an empty status to open.
func (l *Local) Create(ctx context.Context, t structs.Task) (structs.Task, error) {
	t = form.Normalize(t)
	if t.DateCreated == "" {
		t.DateCreated = structs.Today(l.clock.Now())
	}
	if err := form.Validate(t); err != nil {
		return structs.Task{}, l.fail(ctx, "create", "", err, MsgCreateFailed)
	}

	l.mu.Lock()
	t.ID = l.nextID()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()

	l.succeed(ctx, MsgCreated)
	return t, nil
}

// Update merges patch into the task with id. The merged task must still be
// complete; otherwise nothing changes.
func (l *Local) Update(ctx context.Context, id string, patch structs.TaskPatch) (structs.Task, error) {
	t, err := l.apply(id, patch)
	if err != nil {
		return structs.Task{}, l.fail(ctx, "update", id, err, MsgUpdateFailed)
	}
	l.succeed(ctx, MsgUpdated)
	return t, nil
}

// SetStatus changes the status of the task with id.
func (l *Local) SetStatus(ctx context.Context, id string, status structs.Status) (structs.Task, error) {
	if !status.Valid() {
		err := &structs.ValidationError{Fields: map[string]string{"status": "status must be one of [open closed]"}}
		return structs.Task{}, l.fail(ctx, "set status", id, err, MsgUpdateFailed)
	}
	t, err := l.apply(id, structs.TaskPatch{Status: &status})
	if err != nil {
		return structs.Task{}, l.fail(ctx, "set status", id, err, MsgUpdateFailed)
	}
	l.succeed(ctx, statusMessage(string(t.Status)))
	return t, nil
}

// Toggle flips the task with id between open and closed.
func (l *Local) Toggle(ctx context.Context, id string) (structs.Task, error) {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return structs.Task{}, l.fail(ctx, "toggle", id, &structs.NotFoundError{ID: id}, MsgUpdateFailed)
	}
	l.tasks[i].Status = l.tasks[i].Status.Toggle()
	t := l.tasks[i]
	l.mu.Unlock()

	l.succeed(ctx, statusMessage(string(t.Status)))
	return t, nil
}

// Delete removes the task with id.
func (l *Local) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	i := l.indexOf(id)
	if i >= 0 {
		l.tasks = append(l.tasks[:i:i], l.tasks[i+1:]...)
	}
	l.mu.Unlock()

	if i < 0 {
		return l.fail(ctx, "delete", id, &structs.NotFoundError{ID: id}, MsgDeleteFailed)
	}
	l.succeed(ctx, MsgDeleted)
	return nil
}

// apply validates and stores the patched task under one lock.
func (l *Local) apply(id string, patch structs.TaskPatch) (structs.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return structs.Task{}, &structs.NotFoundError{ID: id}
	}
	merged := form.Normalize(patch.ApplyTo(l.tasks[i]))
	if err := form.Validate(merged); err != nil {
		return structs.Task{}, err
	}
	l.tasks[i] = merged
	return merged, nil
}

// Reject reports an operation refused before it reached the board, such
// as a draft that failed validation. It notifies like a failed mutation
// and returns err.
func (l *Local) Reject(ctx context.Context, op, id string, err error) error {
	fallback := MsgUpdateFailed
	if id == "" {
		fallback = MsgCreateFailed
	}
	return l.fail(ctx, op, id, err, fallback)
}

func (l *Local) indexOf(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Local) succeed(ctx context.Context, msg string) {
	l.notifier.Notify(ctx, newNotification(structs.BoardTopic, structs.LevelSuccess, msg, l.clock.Now()))
}

func (l *Local) fail(ctx context.Context, op, id string, err error, fallback string) error {
	logger.Warn(ctx, "board task operation failed", "op", op, "task_id", id, "error", err)
	l.notifier.Notify(ctx, newNotification(structs.BoardTopic, structs.LevelError, failureMessage(err, fallback), l.clock.Now()))
	return err
}
