package config

import (
	"time"

	"github.com/spf13/viper"
)

// Redis holds the redis connection. Leaving addr empty disables redis,
// which turns off token revocation and the redis notification sink.
type Redis struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Username     string        `json:"username" yaml:"username"`
	Password     string        `json:"password" yaml:"password"`
	Db           int           `json:"db" yaml:"db"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

func getRedisConfigs(v *viper.Viper) *Redis {
	const prefix = "data.redis."
	return &Redis{
		Addr:         v.GetString(prefix + "addr"),
		Username:     v.GetString(prefix + "username"),
		Password:     v.GetString(prefix + "password"),
		Db:           v.GetInt(prefix + "db"),
		DialTimeout:  durationOr(v, prefix+"dial_timeout", 5*time.Second),
		ReadTimeout:  durationOr(v, prefix+"read_timeout", 3*time.Second),
		WriteTimeout: durationOr(v, prefix+"write_timeout", 3*time.Second),
	}
}

func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return def
}
