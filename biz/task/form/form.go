// Package form holds the draft of a task being created or edited and decides
// when it is complete enough to submit.
package form

import (
	"fmt"
	"strings"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
	"github.com/ncobase/taskdesk/validation/validator"
)

func init() {
	_ = validator.RegisterValidation("tasktype", func(s string) bool {
		return structs.TaskType(s).Valid()
	})
	_ = validator.RegisterValidation("localtime", structs.ValidLocalTime)
}

// Mode tells whether the draft is a new task or an edit of an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Field names an editable draft field, spelled as in JSON.
type Field string

const (
	FieldDateCreated   Field = "dateCreated"
	FieldEntityName    Field = "entityName"
	FieldTaskType      Field = "taskType"
	FieldScheduledTime Field = "scheduledTime"
	FieldContactPerson Field = "contactPerson"
	FieldNote          Field = "note"
	FieldStatus        Field = "status"
)

// Controller holds one draft. It is not safe for concurrent use.
type Controller struct {
	clock    types.Clock
	mode     Mode
	draft    structs.Task
	original structs.Task
}

// New returns a controller with a fresh create draft.
func New(clock types.Clock) *Controller {
	if clock == nil {
		clock = types.SystemClock
	}
	c := &Controller{clock: clock}
	c.OpenCreate()
	return c
}

// Defaults returns an empty create draft: created today and open.
func (c *Controller) Defaults() structs.Task {
	return structs.Task{
		DateCreated: structs.Today(c.clock.Now()),
		Status:      structs.StatusOpen,
	}
}

// OpenCreate starts a new task draft.
func (c *Controller) OpenCreate() {
	c.mode = ModeCreate
	c.draft = c.Defaults()
	c.original = structs.Task{}
}

// OpenEdit loads an existing task; its id is kept through submission.
func (c *Controller) OpenEdit(t structs.Task) {
	c.mode = ModeEdit
	c.draft = t
	c.original = t
}

// Mode reports the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() structs.Task { return c.draft }

// Set changes one field of the draft.
func (c *Controller) Set(field Field, value string) error {
	switch field {
	case FieldDateCreated:
		c.draft.DateCreated = value
	case FieldEntityName:
		c.draft.EntityName = value
	case FieldTaskType:
		c.draft.TaskType = structs.TaskType(value)
	case FieldScheduledTime:
		c.draft.ScheduledTime = value
	case FieldContactPerson:
		c.draft.ContactPerson = value
	case FieldNote:
		c.draft.Note = value
	case FieldStatus:
		c.draft.Status = structs.Status(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Apply copies every non-empty field of in onto the draft. The draft id is
// never taken from in.
func (c *Controller) Apply(in structs.Task) {
	if in.DateCreated != "" {
		c.draft.DateCreated = in.DateCreated
	}
	if in.EntityName != "" {
		c.draft.EntityName = in.EntityName
	}
	if in.TaskType != "" {
		c.draft.TaskType = in.TaskType
	}
	if in.ScheduledTime != "" {
		c.draft.ScheduledTime = in.ScheduledTime
	}
	if in.ContactPerson != "" {
		c.draft.ContactPerson = in.ContactPerson
	}
	if in.Note != "" {
		c.draft.Note = in.Note
	}
	if in.Status != "" {
		c.draft.Status = in.Status
	}
}

// Patch merges a partial update into the draft. Unlike Apply, a field set
// to "" clears it.
func (c *Controller) Patch(p structs.TaskPatch) {
	c.draft = p.ApplyTo(c.draft)
}

// Submit validates the draft. An incomplete draft yields a
// *structs.ValidationError and nothing else happens. A complete one is
// returned; in create mode its id is empty and the draft goes back to
// defaults, in edit mode the id is preserved and the draft is left as is.
func (c *Controller) Submit() (structs.Task, error) {
	t := Normalize(c.draft)
	if err := Validate(t); err != nil {
		return structs.Task{}, err
	}
	if c.mode == ModeCreate {
		t.ID = ""
		c.OpenCreate()
	}
	return t, nil
}

// Reset discards edits. A create draft returns to defaults; an edit draft
// returns to the task it was opened with and stays in edit mode.
func (c *Controller) Reset() {
	if c.mode == ModeEdit {
		c.draft = c.original
		return
	}
	c.OpenCreate()
}

// Cancel abandons the draft in either mode and leaves a fresh create draft.
func (c *Controller) Cancel() {
	c.OpenCreate()
}

// Normalize trims the text fields and defaults the status to open.
func Normalize(t structs.Task) structs.Task {
	t.EntityName = strings.TrimSpace(t.EntityName)
	t.ContactPerson = strings.TrimSpace(t.ContactPerson)
	t.ScheduledTime = strings.TrimSpace(t.ScheduledTime)
	if t.Status == "" {
		t.Status = structs.StatusOpen
	}
	return t
}

// Validate checks the required fields of a task and the shape of its
// values. It returns nil or a *structs.ValidationError.
func Validate(t structs.Task) error {
	t = Normalize(t)
	if errs := validator.ValidateStruct(&t); len(errs) > 0 {
		return &structs.ValidationError{Fields: errs}
	}
	return nil
}
