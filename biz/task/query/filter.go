// Package query derives board views from a task collection: filtering,
// ordering and summary counts. Everything here is pure; the current time is
// always passed in.
package query

import (
	"strings"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
)

// Board times carry no offset, so filtering and ordering read them all in
// one fixed location.
var wallClock = time.UTC

// bounds is a parsed date range. Zero values mean unbounded.
type bounds struct {
	from, to time.Time
}

func parseBounds(r structs.DateRange) bounds {
	var b bounds
	if r.Start != "" {
		if d, err := structs.ParseDate(r.Start, wallClock); err == nil {
			b.from = types.StartOfDay(d)
		}
	}
	if r.End != "" {
		if d, err := structs.ParseDate(r.End, wallClock); err == nil {
			b.to = types.EndOfDay(d)
		}
	}
	return b
}

func (b bounds) set() bool {
	return !b.from.IsZero() || !b.to.IsZero()
}

func (b bounds) contains(t time.Time) bool {
	if !b.from.IsZero() && t.Before(b.from) {
		return false
	}
	if !b.to.IsZero() && t.After(b.to) {
		return false
	}
	return true
}

// Matches reports whether t satisfies every predicate set in f.
func Matches(t structs.Task, f structs.FilterOptions) bool {
	return matches(t, f, parseBounds(f.DateRange))
}

func matches(t structs.Task, f structs.FilterOptions, b bounds) bool {
	if f.TaskType != "" && t.TaskType != f.TaskType {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ContactPerson != "" && t.ContactPerson != f.ContactPerson {
		return false
	}
	if f.EntityName != "" && !strings.Contains(strings.ToLower(t.EntityName), strings.ToLower(f.EntityName)) {
		return false
	}
	if b.set() {
		at, err := t.ScheduledAt(wallClock)
		if err != nil || !b.contains(at) {
			return false
		}
	}
	return true
}

// Filter returns the tasks matching f, in input order. The input slice is
// not modified.
func Filter(tasks []structs.Task, f structs.FilterOptions) []structs.Task {
	b := parseBounds(f.DateRange)
	out := make([]structs.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, f, b) {
			out = append(out, t)
		}
	}
	return out
}

// Apply filters then orders tasks, returning a new slice.
func Apply(tasks []structs.Task, f structs.FilterOptions, opt structs.SortOption) []structs.Task {
	out := Filter(tasks, f)
	sortInPlace(out, opt)
	return out
}

// ApplyRemote runs the board filter and ordering over persisted tasks by
// way of the board adapter, returning the matching persisted tasks.
func ApplyRemote(tasks []structs.RemoteTask, f structs.FilterOptions, opt structs.SortOption) []structs.RemoteTask {
	return viaBoard(tasks, func(board []structs.Task) []structs.Task {
		return Apply(board, f, opt)
	})
}

// FilterRemote keeps the persisted tasks matching f in their given order.
func FilterRemote(tasks []structs.RemoteTask, f structs.FilterOptions) []structs.RemoteTask {
	return viaBoard(tasks, func(board []structs.Task) []structs.Task {
		return Filter(board, f)
	})
}

func viaBoard(tasks []structs.RemoteTask, view func([]structs.Task) []structs.Task) []structs.RemoteTask {
	byID := make(map[string]structs.RemoteTask, len(tasks))
	board := make([]structs.Task, 0, len(tasks))
	for _, r := range tasks {
		byID[r.ID] = r
		board = append(board, structs.FromRemote(r))
	}

	picked := view(board)
	out := make([]structs.RemoteTask, 0, len(picked))
	for _, t := range picked {
		out = append(out, byID[t.ID])
	}
	return out
}
