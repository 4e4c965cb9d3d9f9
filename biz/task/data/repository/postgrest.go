package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/ctxutil"
)

const postgrestTasksPath = "/rest/v1/tasks"

// PostgRESTOptions configures a PostgREST client.
type PostgRESTOptions struct {
	// URL is the service root, e.g. https://project.supabase.co.
	URL    string
	APIKey string
	// Timeout bounds each request when Client is nil.
	Timeout time.Duration
	Client  *http.Client
}

// PostgREST talks to a Supabase-style REST endpoint for the tasks table.
// The caller's access token, when present in the context, is sent as the
// bearer so row level security scopes the rows; otherwise the API key is.
type PostgREST struct {
	base   string
	apiKey string
	client *http.Client
}

// PostgRESTError is a non-2xx answer from the endpoint.
type PostgRESTError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *PostgRESTError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postgrest: status %d", e.Status)
	}
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
}

// rowFilter selects rows by PostgREST horizontal filters.
type rowFilter struct {
	Select string `url:"select,omitempty"`
	ID     string `url:"id,omitempty"`
	UserID string `url:"user_id,omitempty"`
	Order  string `url:"order,omitempty"`
}

// NewPostgREST validates opts and returns a client.
func NewPostgREST(opts PostgRESTOptions) (*PostgREST, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("postgrest: invalid url %q", opts.URL)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &PostgREST{
		base:   strings.TrimRight(opts.URL, "/") + postgrestTasksPath,
		apiKey: opts.APIKey,
		client: client,
	}, nil
}

func (r *PostgREST) List(ctx context.Context, userID string) ([]structs.RemoteTask, error) {
	var rows []structs.RemoteTask
	err := r.do(ctx, http.MethodGet, rowFilter{
		Select: "*",
		UserID: eq(userID),
		Order:  "created_at.desc",
	}, nil, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]structs.RemoteTask, 0)
	}
	return rows, nil
}

func (r *PostgREST) Insert(ctx context.Context, in structs.RemoteTaskInput) (structs.RemoteTask, error) {
	var rows []structs.RemoteTask
	if err := r.do(ctx, http.MethodPost, rowFilter{Select: "*"}, in, &rows); err != nil {
		return structs.RemoteTask{}, err
	}
	if len(rows) == 0 {
		return structs.RemoteTask{}, fmt.Errorf("postgrest: insert returned no row")
	}
	return rows[0], nil
}

func (r *PostgREST) Update(ctx context.Context, userID, id string, patch structs.RemoteTaskPatch) (structs.RemoteTask, error) {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = nullIfEmpty(patch.Description)
	}
	if patch.DueDate != nil {
		body["due_date"] = nullIfEmpty(patch.DueDate)
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}

	var rows []structs.RemoteTask
	filter := rowFilter{Select: "*", ID: eq(id), UserID: eq(userID)}
	if len(body) == 0 {
		if err := r.do(ctx, http.MethodGet, filter, nil, &rows); err != nil {
			return structs.RemoteTask{}, err
		}
	} else if err := r.do(ctx, http.MethodPatch, filter, body, &rows); err != nil {
		return structs.RemoteTask{}, err
	}
	if len(rows) == 0 {
		return structs.RemoteTask{}, structs.ErrTaskNotFound
	}
	return rows[0], nil
}

func (r *PostgREST) Delete(ctx context.Context, userID, id string) error {
	var rows []structs.RemoteTask
	if err := r.do(ctx, http.MethodDelete, rowFilter{Select: "id", ID: eq(id), UserID: eq(userID)}, nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return structs.ErrTaskNotFound
	}
	return nil
}

// do sends one request asking for the affected rows back and decodes them
// into out.
func (r *PostgREST) do(ctx context.Context, method string, filter rowFilter, body, out any) error {
	values, err := query.Values(filter)
	if err != nil {
		return fmt.Errorf("postgrest: encode query: %w", err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("postgrest: encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+"?"+values.Encode(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}
	if token := ctxutil.GetToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest: %s: %w", method, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("postgrest: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		perr := &PostgRESTError{Status: resp.StatusCode}
		_ = json.Unmarshal(payload, perr)
		return perr
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("postgrest: decode response: %w", err)
	}
	return nil
}

func eq(v string) string {
	return "eq." + v
}
