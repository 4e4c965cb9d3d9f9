package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
app_name: taskdesk-test
run_mode: release
server:
  port: 9090
  read_timeout: 3s
logger:
  level: 5
  format: json
auth:
  jwt:
    secret: s3cret
    expire: 2h
data:
  database:
    master:
      driver: sqlite
      source: "file::memory:?cache=shared"
  kafka:
    brokers: ["k1:9092", "k2:9092"]
backend:
  driver: sql
  breaker:
    failures: 3
notify:
  sinks: [websocket, kafka]
board:
  seed: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AppName != "taskdesk-test" || !cfg.IsProd() {
		t.Errorf("app = %q mode = %q", cfg.AppName, cfg.RunMode)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("write timeout default = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Logger.Level != 5 || cfg.Logger.Format != "json" {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	if cfg.Auth.JWT.Secret != "s3cret" || cfg.Auth.JWT.Expire != 2*time.Hour {
		t.Errorf("jwt = %+v", cfg.Auth.JWT)
	}
	if cfg.Data.Database.Master.Driver != "sqlite" || len(cfg.Data.Kafka.Brokers) != 2 {
		t.Errorf("data = %+v %+v", cfg.Data.Database.Master, cfg.Data.Kafka)
	}
	if cfg.Backend.Driver != "sql" || cfg.Backend.Breaker.Failures != 3 || cfg.Backend.Breaker.MaxRequests != 1 {
		t.Errorf("backend = %+v %+v", cfg.Backend, cfg.Backend.Breaker)
	}
	if !cfg.Notify.Enabled("kafka") || cfg.Notify.Enabled("rabbitmq") {
		t.Errorf("sinks = %v", cfg.Notify.Sinks)
	}
	if cfg.Board.Seed {
		t.Error("seed should be off")
	}

	got, err := GetConfig()
	if err != nil || got != cfg {
		t.Errorf("GetConfig = %p, %v", got, err)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("TASKDESK_SERVER_PORT", "7000")
	t.Setenv("TASKDESK_BACKEND_DRIVER", "postgrest")

	cfg, err := LoadConfig(writeConfig(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7000 || cfg.Backend.Driver != "postgrest" {
		t.Errorf("port = %d driver = %q", cfg.Server.Port, cfg.Backend.Driver)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit file accepted")
	}
}

func TestDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()
	t.Setenv("HOME", dir)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.Driver != "memory" || !cfg.Board.Seed || cfg.Server.Port != 8080 {
		t.Errorf("defaults = %+v %+v %+v", cfg.Backend, cfg.Board, cfg.Server)
	}
	if cfg.Logger.Output != "stdout" {
		t.Errorf("logger output = %q", cfg.Logger.Output)
	}
}
