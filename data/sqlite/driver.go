// Package sqlite registers the "sqlite" database driver, backed by
// mattn/go-sqlite3. It is the default store of the board and of accounts.
//
//	import _ "github.com/ncobase/taskdesk/data/sqlite"
//
// Sources are file paths or URIs, e.g. "file:taskdesk.db?_foreign_keys=on"
// or "file::memory:?cache=shared".
package sqlite

import (
	"context"

	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type driver struct{}

func (d *driver) Name() string { return "sqlite" }

// Connect opens the database with a single writer connection unless the
// configuration asks for more.
func (d *driver) Connect(ctx context.Context, cfg any) (any, error) {
	if node, ok := cfg.(*config.DBNode); ok && node.MaxOpenConn == 0 {
		single := *node
		single.MaxOpenConn = 1
		cfg = &single
	}
	return data.OpenSQL(ctx, d.Name(), "sqlite3", cfg)
}

func (d *driver) Close(conn any) error { return data.CloseSQL(d.Name(), conn) }

func (d *driver) Ping(ctx context.Context, conn any) error {
	return data.PingSQL(ctx, d.Name(), conn)
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
