// Package repository persists signed-in users' tasks. Every implementation
// scopes rows to a user id and reports a missing row as
// structs.ErrTaskNotFound.
package repository

import (
	"context"

	"github.com/ncobase/taskdesk/biz/task/structs"
)

// Repository is the persistence backend of remote task stores.
type Repository interface {
	// List returns the user's rows, newest first.
	List(ctx context.Context, userID string) ([]structs.RemoteTask, error)
	// Insert stores a row and returns it with its id and creation time.
	Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error)
	// Update patches the user's row with id and returns the stored row.
	Update(ctx context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error)
	// Delete removes the user's row with id.
	Delete(ctx context.Context, userID, id string) error
}
