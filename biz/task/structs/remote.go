package structs

import (
	"time"
)

// RemoteStatus is the lifecycle state of a persisted task.
type RemoteStatus string

const (
	StatusPending   RemoteStatus = "pending"
	StatusCompleted RemoteStatus = "completed"
)

// Valid reports whether s is pending or completed.
func (s RemoteStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggle flips pending and completed.
func (s RemoteStatus) Toggle() RemoteStatus {
	if s == StatusPending {
		return StatusCompleted
	}
	return StatusPending
}

// RemoteTask is a task row owned by one user in the persistence backend.
type RemoteTask struct {
	ID          string       `json:"id" bson:"_id"`
	UserID      string       `json:"user_id" bson:"user_id"`
	Title       string       `json:"title" bson:"title"`
	Description *string      `json:"description" bson:"description"`
	DueDate     *string      `json:"due_date" bson:"due_date"`
	Status      RemoteStatus `json:"status" bson:"status"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
}

// DueAt returns the due date in loc, false when unset or unreadable.
func (t RemoteTask) DueAt(loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := ParseDate(*t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// RemoteTaskInput is the insert payload. The backend assigns id and created_at.
type RemoteTaskInput struct {
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	DueDate     *string      `json:"due_date"`
	Status      RemoteStatus `json:"status"`
}

// RemoteTaskPatch is a partial update of a persisted task.
type RemoteTaskPatch struct {
	Title       *string       `json:"title,omitempty" bson:"title,omitempty"`
	Description *string       `json:"description,omitempty" bson:"description,omitempty"`
	DueDate     *string       `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Status      *RemoteStatus `json:"status,omitempty" bson:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p RemoteTaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Status == nil
}

// ApplyTo returns a copy of t with the patch merged in.
func (p RemoteTaskPatch) ApplyTo(t RemoteTask) RemoteTask {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// RemoteTaskDraft is what a user types into the simple remote task form.
type RemoteTaskDraft struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// StatusRequest switches a task to the given status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}
