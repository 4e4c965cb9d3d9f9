// Package structs defines the task board records, their enumerations and
// the mapping between the local board shape and the remote shape.
package structs

// TaskType is the kind of work a board task represents.
type TaskType string

const (
	TypeMeeting       TaskType = "Meeting"
	TypeCall          TaskType = "Call"
	TypeEmail         TaskType = "Email"
	TypeFollowUp      TaskType = "Follow-up"
	TypePresentation  TaskType = "Presentation"
	TypeDocumentation TaskType = "Documentation"
	TypeReview        TaskType = "Review"
	TypeOther         TaskType = "Other"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{
	TypeMeeting,
	TypeCall,
	TypeEmail,
	TypeFollowUp,
	TypePresentation,
	TypeDocumentation,
	TypeReview,
	TypeOther,
}

// Valid reports whether t is one of TaskTypes.
func (t TaskType) Valid() bool {
	for _, v := range TaskTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a board task.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Valid reports whether s is open or closed.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusClosed {
		return StatusOpen
	}
	return StatusClosed
}

// Task is a board task held in process memory.
type Task struct {
	ID            string   `json:"id"`
	DateCreated   string   `json:"dateCreated"`
	EntityName    string   `json:"entityName" validate:"required"`
	TaskType      TaskType `json:"taskType" validate:"required,tasktype"`
	ScheduledTime string   `json:"scheduledTime" validate:"required,localtime"`
	ContactPerson string   `json:"contactPerson" validate:"required"`
	Note          string   `json:"note,omitempty"`
	Status        Status   `json:"status" validate:"omitempty,oneof=open closed"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	DateCreated   *string   `json:"dateCreated,omitempty"`
	EntityName    *string   `json:"entityName,omitempty"`
	TaskType      *TaskType `json:"taskType,omitempty"`
	ScheduledTime *string   `json:"scheduledTime,omitempty"`
	ContactPerson *string   `json:"contactPerson,omitempty"`
	Note          *string   `json:"note,omitempty"`
	Status        *Status   `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.DateCreated == nil && p.EntityName == nil && p.TaskType == nil &&
		p.ScheduledTime == nil && p.ContactPerson == nil && p.Note == nil && p.Status == nil
}

// ApplyTo returns a copy of t with the patch merged in. The id never changes.
func (p TaskPatch) ApplyTo(t Task) Task {
	if p.DateCreated != nil {
		t.DateCreated = *p.DateCreated
	}
	if p.EntityName != nil {
		t.EntityName = *p.EntityName
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.ScheduledTime != nil {
		t.ScheduledTime = *p.ScheduledTime
	}
	if p.ContactPerson != nil {
		t.ContactPerson = *p.ContactPerson
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// PatchFrom builds a patch that overwrites every editable field with t's.
func PatchFrom(t Task) TaskPatch {
	return TaskPatch{
		DateCreated:   &t.DateCreated,
		EntityName:    &t.EntityName,
		TaskType:      &t.TaskType,
		ScheduledTime: &t.ScheduledTime,
		ContactPerson: &t.ContactPerson,
		Note:          &t.Note,
		Status:        &t.Status,
	}
}
