package config

import (
	"time"

	"github.com/spf13/viper"
)

// Database holds the sql connection shared by accounts and the sql task
// backend.
type Database struct {
	Master  *DBNode `json:"master" yaml:"master"`
	Migrate bool    `json:"migrate" yaml:"migrate"`
}

// DBNode is one sql connection. Driver is a registered name: sqlite,
// postgres or mysql.
type DBNode struct {
	Driver          string        `json:"driver" yaml:"driver"`
	Source          string        `json:"source" yaml:"source"`
	MaxIdleConn     int           `json:"max_idle_conn" yaml:"max_idle_conn"`
	MaxOpenConn     int           `json:"max_open_conn" yaml:"max_open_conn"`
	ConnMaxLifeTime time.Duration `json:"conn_max_life_time" yaml:"conn_max_life_time"`
}

func getDatabaseConfig(v *viper.Viper) *Database {
	const prefix = "data.database.master."
	return &Database{
		Master: &DBNode{
			Driver:          v.GetString(prefix + "driver"),
			Source:          v.GetString(prefix + "source"),
			MaxIdleConn:     v.GetInt(prefix + "max_idle_conn"),
			MaxOpenConn:     v.GetInt(prefix + "max_open_conn"),
			ConnMaxLifeTime: durationOr(v, prefix+"conn_max_life_time", time.Hour),
		},
		Migrate: v.GetBool("data.database.migrate"),
	}
}
