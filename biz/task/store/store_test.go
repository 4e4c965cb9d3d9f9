package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/taskdesk/biz/task/data/repository"
	"github.com/ncobase/taskdesk/biz/task/query"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
)

var now = time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newBoard(rec *Recorder) *Local {
	n := 0
	return NewLocal(rec,
		WithClock(types.FixedClock(now)),
		WithTasks(structs.SampleTasks()),
		WithIDs(func() string { n++; return "new-" + string(rune('0'+n)) }),
	)
}

func TestLocalToggleUpdatesStats(t *testing.T) {
	ctx := context.Background()
	rec := &Recorder{}
	board := newBoard(rec)

	if _, err := board.SetStatus(ctx, "4", structs.StatusClosed); err != nil {
		t.Fatal(err)
	}
	before := query.Summarize(board.Tasks(), now)
	if before.Total != 5 || before.Open != 3 || before.Closed != 2 {
		t.Fatalf("before = %+v", before)
	}

	task, err := board.Toggle(ctx, "3")
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != structs.StatusClosed {
		t.Errorf("status = %q", task.Status)
	}
	after := query.Summarize(board.Tasks(), now)
	if after.Total != 5 || after.Open != 2 || after.Closed != 3 {
		t.Errorf("after = %+v", after)
	}
	if got := rec.Last().Message; got != "Task marked as closed!" {
		t.Errorf("message = %q", got)
	}
	if len(rec.All()) != 2 {
		t.Errorf("notifications = %d, want 2", len(rec.All()))
	}
}

func TestLocalCreateRejectsIncompleteTask(t *testing.T) {
	rec := &Recorder{}
	board := newBoard(rec)

	_, err := board.Create(context.Background(), structs.Task{
		EntityName:    "Acme",
		TaskType:      structs.TypeMeeting,
		ScheduledTime: "2024-01-22T10:00",
	})
	var verr *structs.ValidationError
	if !errors.As(err, &verr) || verr.Fields["contactPerson"] == "" {
		t.Fatalf("expected contactPerson error, got %v", err)
	}
	if len(board.Tasks()) != 5 {
		t.Errorf("size = %d, want 5", len(board.Tasks()))
	}
	last := rec.Last()
	if last.Level != structs.LevelError || last.Message != MsgInvalid || last.Topic != structs.BoardTopic {
		t.Errorf("notification = %+v", last)
	}
}

func TestLocalCreatePastTaskIsOverdue(t *testing.T) {
	rec := &Recorder{}
	board := newBoard(rec)
	before := query.Summarize(board.Tasks(), now).Overdue

	task, err := board.Create(context.Background(), structs.Task{
		EntityName:    "Acme",
		TaskType:      structs.TypeMeeting,
		ScheduledTime: "2024-01-21T09:00",
		ContactPerson: "John Smith",
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "new-1" || task.Status != structs.StatusOpen || task.DateCreated != "2024-01-21" {
		t.Errorf("task = %+v", task)
	}
	if got := query.Summarize(board.Tasks(), now).Overdue; got != before+1 {
		t.Errorf("overdue = %d, want %d", got, before+1)
	}
	if rec.Last().Message != MsgCreated {
		t.Errorf("message = %q", rec.Last().Message)
	}
}

func TestLocalUpdateIsAtomic(t *testing.T) {
	rec := &Recorder{}
	board := newBoard(rec)
	ctx := context.Background()

	_, err := board.Update(ctx, "1", structs.TaskPatch{EntityName: strPtr("  "), Note: strPtr("changed")})
	var verr *structs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got, _ := board.Get("1")
	if got.EntityName != "Acme Corporation" || got.Note == "changed" {
		t.Errorf("rejected patch was applied: %+v", got)
	}

	if _, err := board.Update(ctx, "99", structs.TaskPatch{Note: strPtr("x")}); !isNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if err := board.Delete(ctx, "99"); !isNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if rec.Last().Message != MsgNotFound {
		t.Errorf("message = %q", rec.Last().Message)
	}

	if err := board.Delete(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	if len(board.Tasks()) != 4 || rec.Last().Message != MsgDeleted {
		t.Errorf("delete not applied")
	}
}

func TestLocalSetStatusRejectsUnknownStatus(t *testing.T) {
	board := newBoard(&Recorder{})
	_, err := board.SetStatus(context.Background(), "1", structs.Status("archived"))
	var verr *structs.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func isNotFound(err error) bool {
	var nerr *structs.NotFoundError
	return errors.As(err, &nerr)
}

type sessions struct {
	closed []string
}

func (s *sessions) SignOut(_ context.Context, id string) error {
	s.closed = append(s.closed, id)
	return nil
}

func newRemote(t *testing.T) (*Remote, *Recorder, *sessions) {
	t.Helper()
	rec := &Recorder{}
	ss := &sessions{}
	r := NewRemote(repository.NewMemory(nil), ss, rec, types.FixedClock(now))
	if err := r.Load(context.Background(), Principal{UserID: "u1", SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}
	return r, rec, ss
}

func TestRemoteCRUD(t *testing.T) {
	ctx := context.Background()
	r, rec, _ := newRemote(t)
	if len(rec.All()) != 0 {
		t.Fatalf("a successful load must be silent, got %v", rec.All())
	}

	first, err := r.Create(ctx, structs.RemoteTaskInput{Title: " Pay rent ", Description: strPtr(" "), DueDate: strPtr("2024-02-01")})
	if err != nil {
		t.Fatal(err)
	}
	if first.UserID != "u1" || first.Status != structs.StatusPending || first.Title != "Pay rent" || first.Description != nil {
		t.Errorf("created = %+v", first)
	}
	second, _ := r.Create(ctx, structs.RemoteTaskInput{Title: "Call bank"})
	if tasks := r.Tasks(); len(tasks) != 2 || tasks[0].ID != second.ID {
		t.Errorf("new rows must be prepended: %+v", tasks)
	}

	toggled, err := r.Toggle(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.Status != structs.StatusCompleted || rec.Last().Message != "Task marked as completed!" {
		t.Errorf("toggle = %+v, message %q", toggled, rec.Last().Message)
	}

	updated, err := r.Update(ctx, second.ID, structs.RemoteTaskPatch{Title: strPtr("Call the bank")})
	if err != nil {
		t.Fatal(err)
	}
	if r.Tasks()[0].Title != "Call the bank" || updated.Title != "Call the bank" {
		t.Errorf("update not mirrored: %+v", r.Tasks())
	}

	if err := r.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if len(r.Tasks()) != 1 {
		t.Errorf("size = %d", len(r.Tasks()))
	}
	if got := len(rec.All()); got != 5 {
		t.Errorf("notifications = %d, want 5", got)
	}
}

func TestRemoteDeleteMissingRow(t *testing.T) {
	r, rec, _ := newRemote(t)

	err := r.Delete(context.Background(), "does-not-exist")
	var perr *structs.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("cause must be kept: %v", err)
	}
	all := rec.All()
	if len(all) != 1 || all[0].Level != structs.LevelError || all[0].Message != MsgDeleteFailed || all[0].Topic != "u1" {
		t.Errorf("notifications = %+v", all)
	}
}

func TestRemoteRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	r, rec, _ := newRemote(t)
	row, _ := r.Create(ctx, structs.RemoteTaskInput{Title: "a"})

	cases := []struct {
		name  string
		patch structs.RemoteTaskPatch
		field string
	}{
		{"blank title", structs.RemoteTaskPatch{Title: strPtr("  ")}, "title"},
		{"bad due date", structs.RemoteTaskPatch{DueDate: strPtr("tomorrow")}, "due_date"},
		{"bad status", structs.RemoteTaskPatch{Status: func() *structs.RemoteStatus { s := structs.RemoteStatus("done"); return &s }()}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Update(ctx, row.ID, tc.patch)
			var verr *structs.ValidationError
			if !errors.As(err, &verr) || verr.Fields[tc.field] == "" {
				t.Errorf("expected %s error, got %v", tc.field, err)
			}
			if rec.Last().Message != MsgInvalid {
				t.Errorf("message = %q", rec.Last().Message)
			}
		})
	}
	if r.Tasks()[0].Title != "a" {
		t.Error("rejected patch changed the row")
	}

	if _, err := r.Create(ctx, structs.RemoteTaskInput{Title: "   "}); err == nil {
		t.Error("blank title accepted")
	}
	if len(r.Tasks()) != 1 {
		t.Errorf("size = %d", len(r.Tasks()))
	}
}

func TestRemoteRequiresPrincipal(t *testing.T) {
	rec := &Recorder{}
	r := NewRemote(repository.NewMemory(nil), nil, rec, nil)

	_, err := r.Create(context.Background(), structs.RemoteTaskInput{Title: "a"})
	var perr *structs.PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected unauthenticated PersistenceError, got %v", err)
	}
	if err := r.Reload(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("reload: %v", err)
	}
	if len(rec.All()) != 2 {
		t.Errorf("notifications = %d", len(rec.All()))
	}
}

func TestRemoteToggleUnknownID(t *testing.T) {
	r, rec, _ := newRemote(t)
	if _, err := r.Toggle(context.Background(), "nope"); !isNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if rec.Last().Message != MsgNotFound {
		t.Errorf("message = %q", rec.Last().Message)
	}
}

type panicRepo struct {
	repository.Repository
}

func (panicRepo) Delete(context.Context, string, string) error {
	panic("boom")
}

func TestRemoteRecoversBackendPanic(t *testing.T) {
	rec := &Recorder{}
	r := NewRemote(panicRepo{Repository: repository.NewMemory(nil)}, nil, rec, nil)
	_ = r.Load(context.Background(), Principal{UserID: "u1"})

	err := r.Delete(context.Background(), "t1")
	if !errors.Is(err, ErrUnexpected) {
		t.Fatalf("expected ErrUnexpected, got %v", err)
	}
	if rec.Last().Message != MsgUnexpected {
		t.Errorf("message = %q", rec.Last().Message)
	}
}

type failingList struct {
	repository.Repository
}

func (failingList) List(context.Context, string) ([]structs.RemoteTask, error) {
	return nil, errors.New("connection refused")
}

func TestRemoteLoadFailure(t *testing.T) {
	rec := &Recorder{}
	r := NewRemote(failingList{}, nil, rec, nil)

	err := r.Load(context.Background(), Principal{UserID: "u1"})
	var perr *structs.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if rec.Last().Message != MsgLoadFailed {
		t.Errorf("message = %q", rec.Last().Message)
	}
	if r.Principal().UserID != "u1" || len(r.Tasks()) != 0 {
		t.Errorf("principal = %+v, tasks = %d", r.Principal(), len(r.Tasks()))
	}
}

func TestRemoteSignOut(t *testing.T) {
	r, rec, ss := newRemote(t)
	_, _ = r.Create(context.Background(), structs.RemoteTaskInput{Title: "a"})

	if err := r.SignOut(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ss.closed) != 1 || ss.closed[0] != "s1" {
		t.Errorf("sessions closed = %v", ss.closed)
	}
	if r.Principal().UserID != "" || len(r.Tasks()) != 0 {
		t.Error("sign out must clear the store")
	}
	if rec.Last().Message != MsgSignedOut {
		t.Errorf("message = %q", rec.Last().Message)
	}
}

// slowRepo blocks inserts until released, to observe serialization.
type slowRepo struct {
	*repository.Memory
	entered chan struct{}
	release chan struct{}
}

func (s *slowRepo) Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Memory.Insert(ctx, in)
}

func TestRemoteSerializesMutations(t *testing.T) {
	repo := &slowRepo{Memory: repository.NewMemory(nil), entered: make(chan struct{}, 2), release: make(chan struct{})}
	r := NewRemote(repo, nil, &Recorder{}, nil)
	_ = r.Load(context.Background(), Principal{UserID: "u1"})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Create(context.Background(), structs.RemoteTaskInput{Title: "a"})
		}()
	}

	<-repo.entered
	select {
	case <-repo.entered:
		t.Fatal("second insert started before the first was confirmed")
	case <-time.After(50 * time.Millisecond):
	}
	if len(r.Tasks()) != 0 {
		t.Error("nothing may be mirrored before the backend answers")
	}

	repo.release <- struct{}{}
	<-repo.entered
	repo.release <- struct{}{}
	wg.Wait()

	if len(r.Tasks()) != 2 {
		t.Errorf("size = %d", len(r.Tasks()))
	}
}
