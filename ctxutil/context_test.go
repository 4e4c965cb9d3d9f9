package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/taskdesk/consts"
)

func TestValuesRoundTripThroughGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)

	ctx := WithGinContext(context.Background(), c)
	ctx = SetUserID(ctx, "u-1")
	ctx = SetSessionID(ctx, "s-1")

	if GetUserID(ctx) != "u-1" || GetSessionID(ctx) != "s-1" {
		t.Errorf("values lost: %q %q", GetUserID(ctx), GetSessionID(ctx))
	}
	if v, ok := c.Get(consts.UserKey); !ok || v != "u-1" {
		t.Errorf("gin context not updated: %v", v)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx, id := EnsureTraceID(context.Background())
	if id == "" {
		t.Fatal("empty trace id")
	}
	_, again := EnsureTraceID(ctx)
	if again != id {
		t.Errorf("trace id changed: %q != %q", again, id)
	}
}

func TestClientIPFromForwardedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	ctx := WithGinContext(context.Background(), c)
	if ip := GetClientIP(ctx); ip != "203.0.113.9" {
		t.Errorf("ip = %q", ip)
	}
	if ua := GetUserAgent(context.Background()); ua != "unknown" {
		t.Errorf("ua = %q", ua)
	}
}
