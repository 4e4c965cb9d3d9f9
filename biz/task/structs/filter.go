package structs

import (
	"github.com/ncobase/taskdesk/types"
)

// DateRange bounds scheduledTime by calendar dates, both ends inclusive.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// FilterOptions narrows a task list. Zero-valued fields are not applied.
type FilterOptions struct {
	TaskType      TaskType  `json:"taskType,omitempty"`
	Status        Status    `json:"status,omitempty"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	EntityName    string    `json:"entityName,omitempty"`
	DateRange     DateRange `json:"dateRange,omitempty"`
}

// Active reports whether any predicate is set.
func (f FilterOptions) Active() bool {
	return f.TaskType != "" || f.Status != "" || f.ContactPerson != "" || f.EntityName != "" ||
		f.DateRange.Start != "" || f.DateRange.End != ""
}

// SortField names the field a task list is ordered by.
type SortField string

const (
	SortDateCreated   SortField = "dateCreated"
	SortScheduledTime SortField = "scheduledTime"
	SortEntityName    SortField = "entityName"
	SortTaskType      SortField = "taskType"
	SortContactPerson SortField = "contactPerson"
	SortStatus        SortField = "status"
)

// SortFields lists the supported sort fields.
var SortFields = []SortField{
	SortDateCreated,
	SortScheduledTime,
	SortEntityName,
	SortTaskType,
	SortContactPerson,
	SortStatus,
}

// Valid reports whether f is a supported sort field.
func (f SortField) Valid() bool {
	for _, v := range SortFields {
		if v == f {
			return true
		}
	}
	return false
}

// SortOption pairs a field with a direction.
type SortOption struct {
	Field SortField   `json:"sortBy"`
	Order types.Order `json:"sortOrder"`
}

// DefaultSort orders by scheduled time, earliest first.
func DefaultSort() SortOption {
	return SortOption{Field: SortScheduledTime, Order: types.Ascending}
}

// BoardQuery is the query string accepted by board listings.
type BoardQuery struct {
	TaskType      string `form:"taskType"`
	Status        string `form:"status"`
	ContactPerson string `form:"contactPerson"`
	EntityName    string `form:"entityName"`
	Start         string `form:"start"`
	End           string `form:"end"`
	SortBy        string `form:"sortBy"`
	SortOrder     string `form:"sortOrder"`
}

// Filters converts the query into filter options.
func (q BoardQuery) Filters() FilterOptions {
	return FilterOptions{
		TaskType:      TaskType(q.TaskType),
		Status:        Status(q.Status),
		ContactPerson: q.ContactPerson,
		EntityName:    q.EntityName,
		DateRange:     DateRange{Start: q.Start, End: q.End},
	}
}

// Sort converts the query into a sort option, falling back to DefaultSort
// for whatever is missing.
func (q BoardQuery) Sort() SortOption {
	opt := DefaultSort()
	if f := SortField(q.SortBy); f.Valid() {
		opt.Field = f
	}
	if o, ok := types.ParseOrder(q.SortOrder); ok {
		opt.Order = o
	}
	return opt
}
