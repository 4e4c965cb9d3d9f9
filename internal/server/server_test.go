package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/config"
	authstructs "github.com/ncobase/taskdesk/core/auth/structs"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth:    &config.Auth{JWT: &config.JWT{Secret: "test-secret", Expire: time.Hour}},
		Backend: &config.Backend{Driver: "memory"},
		Notify:  &config.Notify{Sinks: []string{"websocket"}, Buffer: 16, Workers: 1, Timeout: time.Second},
		Board:   &config.Board{Seed: true},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, testConfig(), Options{Migrate: true})
	if err != nil {
		t.Fatal(err)
	}
	s.Start(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close(context.Background())
	})
	return s, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func signIn(t *testing.T, ts *httptest.Server) *authstructs.TokenResponse {
	t.Helper()
	creds := `{"email":"ada@example.com","password":"correct horse"}`
	if res := call(t, ts, http.MethodPost, "/api/auth/register", "", creds); res.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", res.StatusCode)
	}
	res := call(t, ts, http.MethodPost, "/api/auth/login", "", creds)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", res.StatusCode)
	}
	var tokens authstructs.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tokens); err != nil {
		t.Fatal(err)
	}
	return &tokens
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	res := call(t, ts, http.MethodGet, "/health", "", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.Header.Get("X-Trace-Id") == "" {
		t.Error("missing trace id header")
	}
	var h Health
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Backend.Name != "tasks.memory" || h.Backend.State != "closed" {
		t.Errorf("health = %+v", h)
	}
}

func TestBoardIsPublic(t *testing.T) {
	_, ts := newTestServer(t)

	res := call(t, ts, http.MethodGet, "/api/board/tasks?status=closed", "", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var view struct {
		Tasks []structs.Task `json:"tasks"`
	}
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Tasks) != 1 || view.Tasks[0].EntityName != "Tech Solutions Inc" {
		t.Errorf("closed tasks = %+v", view.Tasks)
	}
}

func TestSignedInFlow(t *testing.T) {
	s, ts := newTestServer(t)

	if res := call(t, ts, http.MethodGet, "/api/tasks", "", ""); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", res.StatusCode)
	}

	tokens := signIn(t, ts)
	userID := tokens.User.ID

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/notifications/ws?access_token=" + tokens.AccessToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.notify.Broadcaster.Count(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	res := call(t, ts, http.MethodPost, "/api/tasks", tokens.AccessToken, `{"title":"Send invoice","due_date":"2030-01-01"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", res.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var n structs.Notification
	if err := conn.ReadJSON(&n); err != nil {
		t.Fatal(err)
	}
	if n.Message != "Task created successfully!" || n.Topic != userID || n.Level != structs.LevelSuccess {
		t.Errorf("notification = %+v", n)
	}

	res = call(t, ts, http.MethodGet, "/api/tasks", tokens.AccessToken, "")
	var view struct {
		Tasks []structs.RemoteTask `json:"tasks"`
	}
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Tasks) != 1 || view.Tasks[0].Title != "Send invoice" {
		t.Errorf("tasks = %+v", view.Tasks)
	}

	if res := call(t, ts, http.MethodPost, "/api/auth/logout", tokens.AccessToken, ""); res.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", res.StatusCode)
	}
	if err := conn.ReadJSON(&n); err != nil {
		t.Fatal(err)
	}
	if n.Message != "Signed out successfully!" {
		t.Errorf("logout notification = %+v", n)
	}
	if res := call(t, ts, http.MethodGet, "/api/tasks", tokens.AccessToken, ""); res.StatusCode != http.StatusUnauthorized {
		t.Errorf("token still accepted after logout: %d", res.StatusCode)
	}
}
