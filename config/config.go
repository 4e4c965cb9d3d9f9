package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	config *Config
	path   string
	mu     sync.Mutex
	v      = viper.New()
)

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Server   *Server
	Logger   *Logger
	Auth     *Auth
	Data     *Data
	Backend  *Backend
	Notify   *Notify
	Board    *Board
	Observes *Observes
	Viper    *viper.Viper
}

// IsProd reports whether the service runs in release mode.
func (c *Config) IsProd() bool {
	return c.RunMode == "release" || c.RunMode == "production"
}

// GetConfig returns the configuration loaded last.
func GetConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		return nil, errors.New("config: not loaded")
	}
	return config, nil
}

// LoadConfig loads the configuration from configPath, or from the search
// paths when it is empty. A missing file in the search paths is not an
// error; defaults and environment variables apply.
func LoadConfig(configPath string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	nv := viper.New()
	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.AddConfigPath("/etc/taskdesk")
		nv.AddConfigPath("$HOME/.taskdesk")
		nv.AddConfigPath(".")
	}
	nv.SetEnvPrefix("TASKDESK")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	setDefaults(nv)

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := build(nv)
	v, path, config = nv, configPath, cfg
	return cfg, nil
}

// setDefaults registers the keys that must be visible to AutomaticEnv even
// when the file omits them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "taskdesk")
	v.SetDefault("run_mode", "debug")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("backend.driver", "memory")
	v.SetDefault("board.seed", true)
	v.SetDefault("notify.sinks", []string{"websocket", "log"})
	v.SetDefault("auth.jwt.secret", "")
}

func build(v *viper.Viper) *Config {
	return &Config{
		AppName:  v.GetString("app_name"),
		RunMode:  v.GetString("run_mode"),
		Server:   getServerConfig(v),
		Logger:   getLoggerConfig(v),
		Auth:     getAuth(v),
		Data:     getDataConfig(v),
		Backend:  getBackendConfig(v),
		Notify:   getNotifyConfig(v),
		Board:    getBoardConfig(v),
		Observes: getObservesConfig(v),
		Viper:    v,
	}
}

// Reload reloads the configuration from the file.
func Reload() (*Config, error) {
	mu.Lock()
	current := path
	mu.Unlock()

	cfg, err := LoadConfig(current)
	if err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	return cfg, nil
}

// Watch watches the configuration file and calls callback with the reloaded
// configuration, or with the error when the new file cannot be read.
func Watch(callback func(*Config, error)) {
	mu.Lock()
	wv := v
	mu.Unlock()

	wv.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		callback(Reload())
	})
	wv.WatchConfig()
}
