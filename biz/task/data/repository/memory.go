package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
)

// Memory keeps rows in process memory. It backs the "memory" driver and
// tests.
type Memory struct {
	mu    sync.RWMutex
	rows  map[string]structs.RemoteTask
	clock types.Clock
}

// NewMemory returns an empty repository. A nil clock uses the system clock.
func NewMemory(clock types.Clock) *Memory {
	if clock == nil {
		clock = types.SystemClock
	}
	return &Memory{rows: make(map[string]structs.RemoteTask), clock: clock}
}

func (r *Memory) List(_ context.Context, userID string) ([]structs.RemoteTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]structs.RemoteTask, 0)
	for _, row := range r.rows {
		if row.UserID == userID {
			tasks = append(tasks, row)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *Memory) Insert(_ context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	row := structs.RemoteTask{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		CreatedAt:   r.clock.Now().UTC(),
	}

	r.mu.Lock()
	r.rows[row.ID] = row
	r.mu.Unlock()
	return row, nil
}

func (r *Memory) Update(_ context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return structs.RemoteTask{}, structs.ErrTaskNotFound
	}
	row = patch.ApplyTo(row)
	row.Description = nullIfEmpty(row.Description)
	row.DueDate = nullIfEmpty(row.DueDate)
	r.rows[id] = row
	return row, nil
}

func (r *Memory) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return structs.ErrTaskNotFound
	}
	delete(r.rows, id)
	return nil
}

// nullIfEmpty maps a cleared optional column to NULL.
func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
