package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/net/resp"
	"github.com/ncobase/taskdesk/version"
	"github.com/sony/gobreaker"
)

// Health is the body of GET /health.
type Health struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
	Backend    BackendHealth     `json:"backend"`
	Sinks      []string          `json:"sinks"`
}

// BackendHealth reports the task backend breaker.
type BackendHealth struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	h := &Health{
		Status:     "ok",
		Version:    version.GetVersionInfo().Version,
		Components: map[string]string{},
		Backend: BackendHealth{
			Name:  s.tasks.Backend.Name(),
			State: s.tasks.Backend.State().String(),
		},
		Sinks: s.notify.Sinks(),
	}
	for kind, err := range s.data.Ping(ctx) {
		if err != nil {
			h.Components[kind] = err.Error()
			h.Status = "degraded"
			continue
		}
		h.Components[kind] = "ok"
	}
	if s.tasks.Backend.State() == gobreaker.StateOpen {
		h.Status = "degraded"
	}

	if h.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, h)
		return
	}
	resp.Success(c.Writer, h)
}
