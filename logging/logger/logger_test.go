package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ncobase/taskdesk/ctxutil"
	"github.com/ncobase/taskdesk/logging/logger/config"
	"github.com/sirupsen/logrus"
)

func newBufferLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewLogger()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	return m
}

func TestKeyValueFields(t *testing.T) {
	l, buf := newBufferLogger(t)
	l.SetVersion("v1.2.3")
	ctx := ctxutil.SetTraceID(context.Background(), "trace-1")

	l.Info(ctx, "task created", "task_id", "42", "error", errors.New("boom"), "dangling")

	m := decodeLine(t, buf)
	if m["msg"] != "task created" {
		t.Errorf("msg = %v", m["msg"])
	}
	if m["task_id"] != "42" || m["error"] != "boom" {
		t.Errorf("fields = %v", m)
	}
	if m["!BADKEY"] != "dangling" {
		t.Errorf("dangling key = %v", m["!BADKEY"])
	}
	if m[traceKey] != "trace-1" || m[VersionKey] != "v1.2.3" {
		t.Errorf("context fields = %v", m)
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t)
	if err := l.SetLevelName("warn"); err != nil {
		t.Fatal(err)
	}
	l.Info(context.Background(), "quiet")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %s", buf.String())
	}
	l.Warnf(context.Background(), "loud %d", 1)
	if !strings.Contains(buf.String(), "loud 1") {
		t.Errorf("warn missing: %s", buf.String())
	}
}

func TestDesensitizedFields(t *testing.T) {
	l, buf := newBufferLogger(t)
	l.desensitizer = NewDesensitizer(config.DefaultDesensitization())

	l.Info(context.Background(), "login",
		"email", "ann@example.com",
		"password", "hunter22",
		"header", "Bearer abc.def.ghi",
		"payload", map[string]any{"access_token": "xyz", "user": "ann"},
	)

	m := decodeLine(t, buf)
	if m["password"] != "******" {
		t.Errorf("password = %v", m["password"])
	}
	if m["email"] != "ann@example.com" {
		t.Errorf("email = %v", m["email"])
	}
	if m["header"] != "******" {
		t.Errorf("header = %v", m["header"])
	}
	payload, _ := m["payload"].(map[string]any)
	if payload["access_token"] != "******" || payload["user"] != "ann" {
		t.Errorf("payload = %v", payload)
	}
}

func TestDesensitizerExactMatch(t *testing.T) {
	d := NewDesensitizer(&config.Desensitization{
		Enabled:         true,
		SensitiveFields: []string{"pin"},
		MaskChar:        "#",
		FixedMaskLength: 3,
		ExactFieldMatch: true,
		CustomPatterns:  []string{`\d{4}-\d{4}`},
	})
	out := d.DesensitizeFields(logrus.Fields{"pin": "1234", "spinner": "on", "card": "card 1111-2222"})
	if out["pin"] != "###" || out["spinner"] != "on" {
		t.Errorf("out = %v", out)
	}
	if out["card"] != "card ###" {
		t.Errorf("card = %v", out["card"])
	}
}
