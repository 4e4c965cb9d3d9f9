// Package store keeps task collections in memory and reports the outcome
// of every mutation as a notification.
//
// Local holds the shared board in process memory. Remote mirrors one
// signed-in user's rows from a repository.Repository and changes its copy
// only after the backend confirms.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/utils"
)

// Notification texts.
const (
	MsgCreated      = "Task created successfully!"
	MsgUpdated      = "Task updated successfully!"
	MsgDeleted      = "Task deleted successfully!"
	MsgStatusFormat = "Task marked as %s!"
	MsgSignedOut    = "Signed out successfully!"

	MsgLoadFailed   = "Failed to load tasks"
	MsgCreateFailed = "Failed to create task"
	MsgUpdateFailed = "Failed to update task"
	MsgDeleteFailed = "Failed to delete task"
	MsgUnexpected   = "An unexpected error occurred"
	MsgInvalid      = "Please fill in all required fields"
	MsgNotFound     = "Task not found"
)

// Notifier receives the notification of each operation.
type Notifier interface {
	Notify(ctx context.Context, n structs.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n structs.Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n structs.Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, structs.Notification) {})

// Recorder keeps notifications in order. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []structs.Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n structs.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []structs.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]structs.Notification(nil), r.items...)
}

// Last returns the latest notification, or the zero value.
func (r *Recorder) Last() structs.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return structs.Notification{}
	}
	return r.items[len(r.items)-1]
}

// ErrUnexpected marks a failure that did not come from the backend, such
// as a recovered panic.
var ErrUnexpected = errors.New("unexpected error")

// ErrNotAuthenticated is returned by Remote before a principal is loaded.
var ErrNotAuthenticated = errors.New("not authenticated")

// protect runs fn and turns a panic into an error wrapping ErrUnexpected.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()
	return fn()
}

// failureMessage picks the user-facing text for err. fallback is the
// operation's own failure text.
func failureMessage(err error, fallback string) string {
	var verr *structs.ValidationError
	var nerr *structs.NotFoundError
	switch {
	case errors.As(err, &verr):
		return MsgInvalid
	case errors.As(err, &nerr):
		return MsgNotFound
	case errors.Is(err, ErrUnexpected):
		return MsgUnexpected
	default:
		return fallback
	}
}

func statusMessage(status string) string {
	return fmt.Sprintf(MsgStatusFormat, status)
}

func newNotification(topic string, level structs.Level, msg string, now time.Time) structs.Notification {
	return structs.Notification{
		ID:        utils.NanoString(12),
		Topic:     topic,
		Level:     level,
		Message:   msg,
		CreatedAt: now,
	}
}
