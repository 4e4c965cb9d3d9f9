// Package repository stores auth users and sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncobase/taskdesk/core/auth/structs"
	"github.com/ncobase/taskdesk/data"
)

type UserRepository interface {
	Create(ctx context.Context, user *structs.User) error
	FindByID(ctx context.Context, id string) (*structs.User, error)
	FindByEmail(ctx context.Context, email string) (*structs.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *structs.Session) error
	FindByID(ctx context.Context, id string) (*structs.Session, error)
	Delete(ctx context.Context, id string) error
}

var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at VARCHAR(40) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			expires_at VARCHAR(40) NOT NULL,
			created_at VARCHAR(40) NOT NULL
		)`,
	},
}

type sqlRepository struct {
	db      *sql.DB
	dialect string
}

// NewSQLRepositories returns user and session repositories sharing db.
// The tables are created when migrate is set.
func NewSQLRepositories(ctx context.Context, db *sql.DB, dialect string, migrate bool) (UserRepository, SessionRepository, error) {
	stmts, ok := schemas[dialect]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if migrate {
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return nil, nil, fmt.Errorf("migrate auth: %w", err)
			}
		}
	}
	r := &sqlRepository{db: db, dialect: dialect}
	return &userRepository{r}, &sessionRepository{r}, nil
}

func (r *sqlRepository) rebind(query string) string {
	return data.Rebind(r.dialect, query)
}

type userRepository struct{ *sqlRepository }

func (r *userRepository) Create(ctx context.Context, user *structs.User) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`),
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil && isUniqueViolation(err) {
		return structs.ErrEmailTaken
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*structs.User, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, email, password_hash, created_at FROM users WHERE id = ?
	`), id)
	return scanUser(row)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, email, password_hash, created_at FROM users WHERE email = ?
	`), email)
	return scanUser(row)
}

type sessionRepository struct{ *sqlRepository }

func (r *sessionRepository) Create(ctx context.Context, session *structs.Session) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`),
		session.ID,
		session.UserID,
		session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*structs.Session, error) {
	var (
		session            structs.Session
		expiresAt, created string
	)
	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?
	`), id).Scan(&session.ID, &session.UserID, &expiresAt, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, structs.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, err
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return structs.ErrSessionNotFound
	}
	return nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*structs.User, error) {
	var (
		user    structs.User
		created string
	)
	err := scanner.Scan(&user.ID, &user.Email, &user.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, structs.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation matches the duplicate key messages of sqlite, postgres
// and mysql.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
