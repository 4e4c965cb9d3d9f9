package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/ctxutil"
	"github.com/ncobase/taskdesk/types"
	"github.com/sony/gobreaker"
)

func strPtr(s string) *string { return &s }

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestMemoryScopesRowsToUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(&stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})

	first, _ := repo.Insert(ctx, structs.RemoteTaskInput{UserID: "u1", Title: "first", Status: structs.StatusPending})
	second, _ := repo.Insert(ctx, structs.RemoteTaskInput{UserID: "u1", Title: "second", Status: structs.StatusPending})
	_, _ = repo.Insert(ctx, structs.RemoteTaskInput{UserID: "u2", Title: "other", Status: structs.StatusPending})

	rows, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ID != second.ID || rows[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", rows)
	}

	if _, err := repo.Update(ctx, "u2", first.ID, structs.RemoteTaskPatch{Title: strPtr("x")}); !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("foreign update: %v", err)
	}
	if err := repo.Delete(ctx, "u2", first.ID); !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("foreign delete: %v", err)
	}
}

func TestMemoryUpdateClearsOptionalColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(nil)
	row, _ := repo.Insert(ctx, structs.RemoteTaskInput{
		UserID: "u1", Title: "a", Description: strPtr("d"), DueDate: strPtr("2024-03-01"), Status: structs.StatusPending,
	})

	done := structs.StatusCompleted
	got, err := repo.Update(ctx, "u1", row.ID, structs.RemoteTaskPatch{Description: strPtr(""), Status: &done})
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != nil {
		t.Errorf("description = %v, want nil", *got.Description)
	}
	if got.DueDate == nil || *got.DueDate != "2024-03-01" || got.Status != done {
		t.Errorf("unexpected row %+v", got)
	}
}

func TestSQLRebind(t *testing.T) {
	pg := &SQL{dialect: "postgres"}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := &SQL{dialect: "sqlite"}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
	if _, err := NewSQL(nil, "sqlite", nil); err == nil {
		t.Error("nil db accepted")
	}
}

func TestPostgRESTRequests(t *testing.T) {
	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	var lastQuery, lastPrefer, lastAuth, lastKey string
	var lastBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/tasks" {
			http.NotFound(w, r)
			return
		}
		lastQuery = r.URL.RawQuery
		lastPrefer = r.Header.Get("Prefer")
		lastAuth = r.Header.Get("Authorization")
		lastKey = r.Header.Get("apikey")
		lastBody = nil
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			_ = json.Unmarshal(body, &lastBody)
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodPatch:
			_ = json.NewEncoder(w).Encode([]structs.RemoteTask{{
				ID: "t1", UserID: "u1", Title: "Call bank", Status: structs.StatusPending, CreatedAt: created,
			}})
		case http.MethodDelete:
			if strings.Contains(r.URL.RawQuery, "id=eq.missing") {
				_, _ = w.Write([]byte("[]"))
				return
			}
			_, _ = w.Write([]byte(`[{"id":"t1"}]`))
		}
	}))
	defer srv.Close()

	repo, err := NewPostgREST(PostgRESTOptions{URL: srv.URL + "/", APIKey: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := ctxutil.SetToken(context.Background(), "user-jwt")

	rows, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "t1" || !rows[0].CreatedAt.Equal(created) {
		t.Errorf("rows = %+v", rows)
	}
	if !strings.Contains(lastQuery, "user_id=eq.u1") || !strings.Contains(lastQuery, "order=created_at.desc") {
		t.Errorf("list query = %q", lastQuery)
	}
	if lastAuth != "Bearer user-jwt" || lastKey != "anon" {
		t.Errorf("headers auth=%q apikey=%q", lastAuth, lastKey)
	}

	if _, err := repo.Insert(ctx, structs.RemoteTaskInput{UserID: "u1", Title: "Call bank", Status: structs.StatusPending}); err != nil {
		t.Fatal(err)
	}
	if lastPrefer != "return=representation" {
		t.Errorf("prefer = %q", lastPrefer)
	}
	if v, ok := lastBody["description"]; !ok || v != nil {
		t.Errorf("description must be sent as null, body = %v", lastBody)
	}

	if _, err := repo.Update(ctx, "u1", "t1", structs.RemoteTaskPatch{DueDate: strPtr("")}); err != nil {
		t.Fatal(err)
	}
	if v, ok := lastBody["due_date"]; !ok || v != nil {
		t.Errorf("cleared due_date must be null, body = %v", lastBody)
	}
	if !strings.Contains(lastQuery, "id=eq.t1") {
		t.Errorf("update query = %q", lastQuery)
	}

	if err := repo.Delete(ctx, "u1", "missing"); !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("delete missing: %v", err)
	}
	if err := repo.Delete(context.Background(), "u1", "t1"); err != nil {
		t.Errorf("delete: %v", err)
	}
	if lastAuth != "Bearer anon" {
		t.Errorf("fallback auth = %q", lastAuth)
	}
}

func TestPostgRESTError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"PGRST301","message":"JWT expired"}`))
	}))
	defer srv.Close()

	repo, _ := NewPostgREST(PostgRESTOptions{URL: srv.URL})
	_, err := repo.List(context.Background(), "u1")
	var perr *PostgRESTError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PostgRESTError, got %v", err)
	}
	if perr.Status != http.StatusUnauthorized || perr.Code != "PGRST301" || perr.Message != "JWT expired" {
		t.Errorf("unexpected error %+v", perr)
	}

	if _, err := NewPostgREST(PostgRESTOptions{URL: "not a url"}); err == nil {
		t.Error("invalid url accepted")
	}
}

type failingRepo struct {
	Repository
	calls int
	err   error
}

func (f *failingRepo) Delete(context.Context, string, string) error {
	f.calls++
	return f.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	backend := &failingRepo{err: errors.New("connection refused")}
	b := NewBreaker("tasks.test", backend, &config.Breaker{MaxRequests: 1, Timeout: time.Minute, Failures: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Delete(ctx, "u1", "t1"); err == nil {
			t.Fatal("expected backend error")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	err := b.Delete(ctx, "u1", "t1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected open state error, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("open breaker must not call the backend, calls = %d", backend.calls)
	}
}

func TestBreakerIgnoresMissingRows(t *testing.T) {
	backend := &failingRepo{err: structs.ErrTaskNotFound}
	b := NewBreaker("tasks.test", backend, &config.Breaker{MaxRequests: 1, Failures: 1})

	for i := 0; i < 3; i++ {
		if err := b.Delete(context.Background(), "u1", "t1"); !errors.Is(err, structs.ErrTaskNotFound) {
			t.Fatalf("delete: %v", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestOpenMemoryBackend(t *testing.T) {
	repo, err := Open(context.Background(), nil, nil, false, types.SystemClock)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := repo.List(context.Background(), "nobody")
	if err != nil || len(rows) != 0 {
		t.Errorf("rows = %v err = %v", rows, err)
	}
	if _, err := Open(context.Background(), &config.Backend{Driver: "sql"}, nil, false, nil); err == nil {
		t.Error("sql backend without database accepted")
	}
	if _, err := Open(context.Background(), &config.Backend{Driver: "cassandra"}, nil, false, nil); err == nil {
		t.Error("unknown backend accepted")
	}
}
