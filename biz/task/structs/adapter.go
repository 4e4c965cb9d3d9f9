package structs

import (
	"fmt"
	"strings"
	"time"
)

// ToRemote maps a board task onto the remote insert shape owned by userID.
// The title carries the task type and entity, the note becomes the
// description and the scheduled date becomes the due date.
func ToRemote(t Task, userID string) RemoteTaskInput {
	title := strings.TrimSpace(t.EntityName)
	if t.TaskType != "" {
		title = fmt.Sprintf("%s: %s", t.TaskType, title)
	}

	in := RemoteTaskInput{
		UserID: userID,
		Title:  title,
		Status: RemoteStatusOf(t.Status),
	}
	if note := strings.TrimSpace(t.Note); note != "" {
		in.Description = &note
	}
	if at, err := ParseLocalTime(t.ScheduledTime, time.UTC); err == nil {
		due := at.Format(DateLayout)
		in.DueDate = &due
	}
	return in
}

// FromRemote maps a persisted task onto the board shape so the board engine
// can filter and order it. The title stands in for the entity name.
func FromRemote(r RemoteTask) Task {
	t := Task{
		ID:         r.ID,
		EntityName: r.Title,
		TaskType:   TypeOther,
		Status:     StatusOpen,
	}
	if !r.CreatedAt.IsZero() {
		t.DateCreated = r.CreatedAt.Format(DateLayout)
	}
	if r.Status == StatusCompleted {
		t.Status = StatusClosed
	}
	if r.Description != nil {
		t.Note = *r.Description
	}
	if due, ok := r.DueAt(time.UTC); ok {
		t.ScheduledTime = due.Format(LocalTimeLayout)
	}
	return t
}

// RemoteStatusOf maps a board status onto the remote enumeration.
func RemoteStatusOf(s Status) RemoteStatus {
	if s == StatusClosed {
		return StatusCompleted
	}
	return StatusPending
}

// BoardStatusOf maps a remote status onto the board enumeration. Unknown
// values map to the empty status.
func BoardStatusOf(s RemoteStatus) Status {
	switch s {
	case StatusPending:
		return StatusOpen
	case StatusCompleted:
		return StatusClosed
	}
	return ""
}
