package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/types"
)

const taskColumns = "id, user_id, title, description, due_date, status, created_at"

var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NULL,
			due_date TEXT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NULL,
			due_date TEXT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_created ON tasks(user_id, created_at)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS tasks (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			title VARCHAR(512) NOT NULL,
			description TEXT NULL,
			due_date VARCHAR(10) NULL,
			status VARCHAR(16) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_tasks_user_created (user_id, created_at)
		)`,
	},
}

// SQL stores rows in the tasks table of a database/sql pool. dialect is the
// name of the data driver that opened the pool.
type SQL struct {
	db      *sql.DB
	dialect string
	clock   types.Clock
}

// NewSQL wraps db. Unknown dialects are rejected.
func NewSQL(db *sql.DB, dialect string, clock types.Clock) (*SQL, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}
	if _, ok := schemas[dialect]; !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if clock == nil {
		clock = types.SystemClock
	}
	return &SQL{db: db, dialect: dialect, clock: clock}, nil
}

// Migrate creates the tasks table and its index when missing.
func (r *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[r.dialect] {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate tasks: %w", err)
		}
	}
	return nil
}

func (r *SQL) List(ctx context.Context, userID string) ([]structs.RemoteTask, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT `+taskColumns+`
		FROM tasks WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRemoteTasks(rows)
}

func (r *SQL) Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	row := structs.RemoteTask{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		CreatedAt:   r.clock.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), row.ID, row.UserID, row.Title, nullString(row.Description), nullString(row.DueDate), string(row.Status), row.CreatedAt)
	if err != nil {
		return structs.RemoteTask{}, err
	}
	return row, nil
}

func (r *SQL) Update(ctx context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(patch.Description))
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullString(patch.DueDate))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if len(sets) == 0 {
		return r.get(ctx, userID, id)
	}
	args = append(args, id, userID)

	result, err := r.db.ExecContext(ctx, r.rebind(
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
	), args...)
	if err != nil {
		return structs.RemoteTask{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return structs.RemoteTask{}, err
	}
	if affected == 0 {
		return structs.RemoteTask{}, structs.ErrTaskNotFound
	}
	return r.get(ctx, userID, id)
}

func (r *SQL) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`
		DELETE FROM tasks WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return structs.ErrTaskNotFound
	}
	return nil
}

func (r *SQL) get(ctx context.Context, userID, id string) (structs.RemoteTask, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?
	`), id, userID)
	task, err := scanRemoteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return structs.RemoteTask{}, structs.ErrTaskNotFound
	}
	return task, err
}

func (r *SQL) rebind(query string) string {
	return data.Rebind(r.dialect, query)
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanRemoteTask(scanner interface{ Scan(dest ...any) error }) (structs.RemoteTask, error) {
	var (
		item        structs.RemoteTask
		description sql.NullString
		dueDate     sql.NullString
		status      string
	)
	if err := scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&description,
		&dueDate,
		&status,
		&item.CreatedAt,
	); err != nil {
		return structs.RemoteTask{}, err
	}

	if description.Valid {
		item.Description = &description.String
	}
	if dueDate.Valid {
		item.DueDate = &dueDate.String
	}
	item.Status = structs.RemoteStatus(status)
	return item, nil
}

func scanRemoteTasks(rows *sql.Rows) ([]structs.RemoteTask, error) {
	tasks := make([]structs.RemoteTask, 0)
	for rows.Next() {
		task, err := scanRemoteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
