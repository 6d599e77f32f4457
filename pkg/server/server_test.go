package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"frameworks/api_tunnels/pkg/logging"
	"frameworks/api_tunnels/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func TestSetupServiceRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewDiscardLogger()
	hc := monitoring.NewHealthChecker("svc", "v1")
	mc := monitoring.NewMetricsCollector("svc", "v1", "abc")
	r := SetupServiceRouter(logger, "svc", hc, mc)
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	for _, path := range []string{"/ping", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), "GET", path, nil)
		r.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/metrics", nil)
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "svc_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestSetupServiceRouterWithoutChecker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupServiceRouter(logging.NewDiscardLogger(), "svc", nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := DefaultConfig("bosun", "18040")
	if cfg.Port != "18040" || cfg.ServiceName != "bosun" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	t.Setenv("PORT", "9999")
	if got := DefaultConfig("bosun", "18040").Port; got != "9999" {
		t.Fatalf("expected PORT override, got %s", got)
	}
}
