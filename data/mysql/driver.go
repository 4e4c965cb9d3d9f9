// Package mysql registers the "mysql" database driver, backed by
// go-sql-driver/mysql.
//
//	import _ "github.com/ncobase/taskdesk/data/mysql"
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"
)

type driver struct{}

func (d *driver) Name() string { return "mysql" }

// Connect forces parseTime so DATETIME columns scan into time.Time, and
// clientFoundRows so an UPDATE that matches a row reports it as affected.
func (d *driver) Connect(ctx context.Context, cfg any) (any, error) {
	node, ok := cfg.(*config.DBNode)
	if !ok {
		return nil, fmt.Errorf("mysql: invalid configuration type, expected *config.DBNode")
	}
	dsn, err := mysql.ParseDSN(node.Source)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid source: %w", err)
	}
	dsn.ParseTime = true
	dsn.ClientFoundRows = true

	withTime := *node
	withTime.Source = dsn.FormatDSN()
	return data.OpenSQL(ctx, d.Name(), "mysql", &withTime)
}

func (d *driver) Close(conn any) error { return data.CloseSQL(d.Name(), conn) }

func (d *driver) Ping(ctx context.Context, conn any) error {
	return data.PingSQL(ctx, d.Name(), conn)
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
