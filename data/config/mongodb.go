package config

import (
	"time"

	"github.com/spf13/viper"
)

// MongoDB mongodb config struct
type MongoDB struct {
	URI            string        `json:"uri" yaml:"uri"`
	Database       string        `json:"database" yaml:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
}

// getMongoDBConfigs reads MongoDB configurations
func getMongoDBConfigs(v *viper.Viper) *MongoDB {
	database := v.GetString("data.mongodb.database")
	if database == "" {
		database = "taskdesk"
	}
	timeout := v.GetDuration("data.mongodb.connect_timeout")
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &MongoDB{
		URI:            v.GetString("data.mongodb.uri"),
		Database:       database,
		ConnectTimeout: timeout,
	}
}
