package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ncobase/taskdesk/biz/task/query"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
)

func runTasks(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newTasksCommand(types.FixedClock(time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC)))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestTasksTable(t *testing.T) {
	out := runTasks(t, "--status", "open", "--sort", "entityName")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("header = %q", lines[0])
	}
	var order []string
	for _, l := range lines[1:5] {
		order = append(order, strings.Fields(l)[0])
	}
	if got := strings.Join(order, ","); got != "1,3,5,4" {
		t.Errorf("order = %s", got)
	}
	if last := lines[len(lines)-1]; last != "4 shown, 5 total, 4 open, 1 closed, 2 overdue" {
		t.Errorf("summary = %q", last)
	}
}

func TestTasksJSON(t *testing.T) {
	out := runTasks(t, "--json", "--entity", "TECH")

	var got struct {
		Tasks []structs.Task `json:"tasks"`
		Stats query.Stats    `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "2" {
		t.Errorf("tasks = %+v", got.Tasks)
	}
	if got.Stats.Total != 5 || got.Stats.Overdue != 2 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(out.Bytes()) {
		t.Errorf("version output is not JSON: %s", out.String())
	}
}
