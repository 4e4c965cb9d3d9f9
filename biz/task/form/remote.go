package form

import (
	"strings"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/validation/validator"
)

// RemoteForm is the short form used on the signed-in board: a title, an
// optional description and an optional due date.
type RemoteForm struct {
	draft structs.RemoteTaskDraft
}

// NewRemote returns an empty remote form.
func NewRemote() *RemoteForm {
	return &RemoteForm{}
}

// Apply replaces the draft.
func (f *RemoteForm) Apply(d structs.RemoteTaskDraft) {
	f.draft = d
}

// Draft returns a copy of the current draft.
func (f *RemoteForm) Draft() structs.RemoteTaskDraft { return f.draft }

// Input trims the draft and turns empty optional fields into nil without
// checking it. The store validates what it receives.
func (f *RemoteForm) Input() structs.RemoteTaskInput {
	d := trimDraft(f.draft)
	in := structs.RemoteTaskInput{Title: d.Title}
	if d.Description != "" {
		in.Description = &d.Description
	}
	if d.DueDate != "" {
		in.DueDate = &d.DueDate
	}
	return in
}

// Submit is Input with validation. A blank title or an unreadable due date
// is a *structs.ValidationError. On success the form is cleared. Owner and
// status are left for the store to fill in.
func (f *RemoteForm) Submit() (structs.RemoteTaskInput, error) {
	d := trimDraft(f.draft)
	if errs := validator.ValidateStruct(&d); len(errs) > 0 {
		return structs.RemoteTaskInput{}, &structs.ValidationError{Fields: errs}
	}
	in := f.Input()
	f.draft = structs.RemoteTaskDraft{}
	return in, nil
}

func trimDraft(d structs.RemoteTaskDraft) structs.RemoteTaskDraft {
	return structs.RemoteTaskDraft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		DueDate:     strings.TrimSpace(d.DueDate),
	}
}
