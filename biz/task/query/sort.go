package query

import (
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
)

type comparator = types.Comparator[structs.Task]

// comparators selects the comparison for each sort field. Time fields
// compare as instants; everything else compares as raw text.
var comparators = map[structs.SortField]comparator{
	structs.SortDateCreated: byInstant(func(t structs.Task) (time.Time, error) {
		return t.CreatedOn(wallClock)
	}),
	structs.SortScheduledTime: byInstant(func(t structs.Task) (time.Time, error) {
		return t.ScheduledAt(wallClock)
	}),
	structs.SortEntityName: func(a, b structs.Task) int {
		return types.CompareString(a.EntityName, b.EntityName)
	},
	structs.SortTaskType: func(a, b structs.Task) int {
		return types.CompareString(string(a.TaskType), string(b.TaskType))
	},
	structs.SortContactPerson: func(a, b structs.Task) int {
		return types.CompareString(a.ContactPerson, b.ContactPerson)
	},
	structs.SortStatus: func(a, b structs.Task) int {
		return types.CompareString(string(a.Status), string(b.Status))
	},
}

// byInstant compares by a parsed time. Unreadable values read as the zero
// time and sort first in ascending order.
func byInstant(at func(structs.Task) (time.Time, error)) comparator {
	return func(a, b structs.Task) int {
		ta, _ := at(a)
		tb, _ := at(b)
		return types.CompareTime(ta, tb)
	}
}

// Sort returns a copy of tasks ordered by opt. The sort is stable: tasks
// comparing equal keep their input order. An unknown field leaves the input
// order unchanged.
func Sort(tasks []structs.Task, opt structs.SortOption) []structs.Task {
	out := append([]structs.Task(nil), tasks...)
	sortInPlace(out, opt)
	return out
}

func sortInPlace(tasks []structs.Task, opt structs.SortOption) {
	cmp, ok := comparators[opt.Field]
	if !ok {
		return
	}
	order := opt.Order
	if order == "" {
		order = types.Ascending
	}
	types.SortStable(tasks, cmp, order)
}
