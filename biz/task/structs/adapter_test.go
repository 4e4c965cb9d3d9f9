package structs

import (
	"testing"
	"time"
)

func TestToRemote(t *testing.T) {
	task := Task{
		EntityName:    "Acme Corporation",
		TaskType:      TypeMeeting,
		ScheduledTime: "2024-01-20T10:00",
		ContactPerson: "John Smith",
		Note:          "  kickoff  ",
		Status:        StatusClosed,
	}

	in := ToRemote(task, "user-1")
	if in.UserID != "user-1" {
		t.Errorf("user id = %q", in.UserID)
	}
	if in.Title != "Meeting: Acme Corporation" {
		t.Errorf("title = %q", in.Title)
	}
	if in.Description == nil || *in.Description != "kickoff" {
		t.Errorf("description = %v", in.Description)
	}
	if in.DueDate == nil || *in.DueDate != "2024-01-20" {
		t.Errorf("due date = %v", in.DueDate)
	}
	if in.Status != StatusCompleted {
		t.Errorf("status = %q", in.Status)
	}
}

func TestToRemoteOmitsEmptyOptionalFields(t *testing.T) {
	in := ToRemote(Task{EntityName: "Acme", Status: StatusOpen}, "u")
	if in.Description != nil || in.DueDate != nil {
		t.Fatalf("expected nil optional fields, got %v %v", in.Description, in.DueDate)
	}
	if in.Status != StatusPending {
		t.Errorf("status = %q", in.Status)
	}
}

func TestFromRemote(t *testing.T) {
	desc := "call back"
	due := "2024-03-01"
	r := RemoteTask{
		ID:          "r1",
		UserID:      "u",
		Title:       "Ring supplier",
		Description: &desc,
		DueDate:     &due,
		Status:      StatusCompleted,
		CreatedAt:   time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC),
	}

	task := FromRemote(r)
	if task.ID != "r1" || task.EntityName != "Ring supplier" || task.Note != "call back" {
		t.Errorf("unexpected mapping: %+v", task)
	}
	if task.DateCreated != "2024-02-10" {
		t.Errorf("dateCreated = %q", task.DateCreated)
	}
	if task.ScheduledTime != "2024-03-01T00:00" {
		t.Errorf("scheduledTime = %q", task.ScheduledTime)
	}
	if task.Status != StatusClosed {
		t.Errorf("status = %q", task.Status)
	}
}

func TestPatchApplyKeepsID(t *testing.T) {
	name := "Beta"
	closed := StatusClosed
	orig := SampleTasks()[0]

	got := TaskPatch{EntityName: &name, Status: &closed}.ApplyTo(orig)
	if got.ID != orig.ID {
		t.Errorf("id changed: %q", got.ID)
	}
	if got.EntityName != "Beta" || got.Status != StatusClosed {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.ContactPerson != orig.ContactPerson {
		t.Errorf("untouched field changed: %q", got.ContactPerson)
	}
}

func TestParseLocalTime(t *testing.T) {
	for _, s := range []string{"2024-01-20T10:00", "2024-01-20T10:00:30", "2024-01-20 10:00"} {
		if _, err := ParseLocalTime(s, time.UTC); err != nil {
			t.Errorf("ParseLocalTime(%q): %v", s, err)
		}
	}
	if _, err := ParseLocalTime("tomorrow", time.UTC); err == nil {
		t.Error("expected error for free text")
	}
}

func TestStatusToggle(t *testing.T) {
	if StatusOpen.Toggle() != StatusClosed || StatusClosed.Toggle() != StatusOpen {
		t.Error("board status toggle")
	}
	if StatusPending.Toggle() != StatusCompleted || StatusCompleted.Toggle() != StatusPending {
		t.Error("remote status toggle")
	}
}
