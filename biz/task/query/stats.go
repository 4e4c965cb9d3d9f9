package query

import (
	"sort"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
)

// Stats summarises a board.
type Stats struct {
	Total   int `json:"total"`
	Open    int `json:"open"`
	Closed  int `json:"closed"`
	Overdue int `json:"overdue"`
}

// RemoteStats summarises a user's persisted tasks.
type RemoteStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// Overdue reports whether an open task's scheduled time is strictly before
// now. The scheduled wall time is read in now's location.
func Overdue(t structs.Task, now time.Time) bool {
	if t.Status != structs.StatusOpen {
		return false
	}
	at, err := t.ScheduledAt(now.Location())
	if err != nil {
		return false
	}
	return at.Before(now)
}

// RemoteOverdue reports whether a pending task has a due date strictly
// before now. Tasks without a due date are never overdue.
func RemoteOverdue(t structs.RemoteTask, now time.Time) bool {
	if t.Status != structs.StatusPending {
		return false
	}
	due, ok := t.DueAt(now.Location())
	if !ok {
		return false
	}
	return due.Before(now)
}

// Summarize counts a board as of now.
func Summarize(tasks []structs.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case structs.StatusOpen:
			s.Open++
		case structs.StatusClosed:
			s.Closed++
		}
		if Overdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// SummarizeRemote counts persisted tasks as of now.
func SummarizeRemote(tasks []structs.RemoteTask, now time.Time) RemoteStats {
	s := RemoteStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case structs.StatusPending:
			s.Pending++
		case structs.StatusCompleted:
			s.Completed++
		}
		if RemoteOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// TeamMembers returns the distinct contact persons on a board, sorted.
func TeamMembers(tasks []structs.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.ContactPerson == "" {
			continue
		}
		if _, ok := seen[t.ContactPerson]; ok {
			continue
		}
		seen[t.ContactPerson] = struct{}{}
		out = append(out, t.ContactPerson)
	}
	sort.Strings(out)
	return out
}
