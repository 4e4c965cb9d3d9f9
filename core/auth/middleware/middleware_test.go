package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/core/auth/structs"
	"github.com/ncobase/taskdesk/ctxutil"
)

type staticAuth map[string]*structs.Identity

func (s staticAuth) Authenticate(_ context.Context, token string) (*structs.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, structs.ErrInvalidToken
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := staticAuth{"good": {UserID: "u1", Email: "a@b.c", SessionID: "s1", Token: "good"}}

	r := gin.New()
	r.Use(Authenticate(auth, "/public"))
	r.GET("/me", func(c *gin.Context) {
		uid, _ := GetCurrentUserID(c)
		sid, _ := GetCurrentSessionID(c)
		c.String(http.StatusOK, uid+"|"+sid+"|"+ctxutil.GetUserID(c.Request.Context())+"|"+ctxutil.GetToken(c.Request.Context()))
	})
	r.GET("/public/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuthenticate(t *testing.T) {
	r := newRouter()
	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"valid", "/me", "Bearer good", http.StatusOK, "u1|s1|u1|good"},
		{"lower case scheme", "/me", "bearer good", http.StatusOK, "u1|s1|u1|good"},
		{"query token", "/me?access_token=good", "", http.StatusOK, "u1|s1|u1|good"},
		{"missing", "/me", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/me", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", "/me", "Bearer bad", http.StatusUnauthorized, ""},
		{"whitelisted", "/public/ping", "", http.StatusOK, "pong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
