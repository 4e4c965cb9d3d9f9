package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"

	_ "github.com/ncobase/taskdesk/data/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	drv, err := data.GetDatabaseDriver("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	conn, err := drv.Connect(context.Background(), &config.DBNode{
		Driver: "sqlite",
		Source: filepath.Join(t.TempDir(), "tasks.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = drv.Close(conn) })
	return conn.(*sql.DB)
}

func TestSQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQL(openSQLite(t), "sqlite", &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.Migrate(ctx); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}

	first, err := repo.Insert(ctx, structs.RemoteTaskInput{
		UserID: "u1", Title: "Call Acme", Description: strPtr("renewal"), Status: structs.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.Insert(ctx, structs.RemoteTaskInput{
		UserID: "u1", Title: "Send invoice", DueDate: strPtr("2024-02-01"), Status: structs.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Insert(ctx, structs.RemoteTaskInput{UserID: "u2", Title: "other", Status: structs.StatusPending}); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ID != second.ID || rows[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", rows)
	}
	if rows[1].Description == nil || *rows[1].Description != "renewal" || rows[1].DueDate != nil {
		t.Errorf("optional columns = %+v", rows[1])
	}

	done := structs.StatusCompleted
	got, err := repo.Update(ctx, "u1", first.ID, structs.RemoteTaskPatch{Description: strPtr(""), Status: &done})
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != nil || got.Status != done || got.Title != "Call Acme" {
		t.Errorf("updated row = %+v", got)
	}

	if _, err := repo.Update(ctx, "u2", first.ID, structs.RemoteTaskPatch{Title: strPtr("x")}); !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("foreign update: %v", err)
	}
	if err := repo.Delete(ctx, "u1", "missing"); !errors.Is(err, structs.ErrTaskNotFound) {
		t.Errorf("missing delete: %v", err)
	}
	if err := repo.Delete(ctx, "u1", first.ID); err != nil {
		t.Fatal(err)
	}
	if rows, _ := repo.List(ctx, "u1"); len(rows) != 1 || rows[0].ID != second.ID {
		t.Errorf("after delete: %+v", rows)
	}
}

func TestNewSQLRejectsUnknownDialect(t *testing.T) {
	if _, err := NewSQL(&sql.DB{}, "oracle", nil); err == nil {
		t.Error("expected an error for an unknown dialect")
	}
}
