package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthChecker_Basic(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: "healthy"} })
	status := hc.CheckHealth()
	if status.Status != "healthy" {
		t.Fatalf("expected healthy")
	}
}

func TestHealthChecker_DegradedDoesNotFail(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("ok", func() CheckResult { return CheckResult{Status: StatusHealthy} })
	hc.AddCheck("relay", ProcessHealthCheck("gost", func() (bool, error) { return false, nil }))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", hc.Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for degraded, got %d", w.Code)
	}
	if got := hc.CheckHealth().Status; got != StatusDegraded {
		t.Fatalf("expected degraded, got %s", got)
	}
}

func TestHealthChecker_UnhealthyIs503(t *testing.T) {
	hc := NewHealthChecker("svc", "v1")
	hc.AddCheck("dir", DirectoryHealthCheck(filepath.Join(t.TempDir(), "missing")))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", hc.Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestFileHealthCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parameters.csv")

	if got := FileHealthCheck(path, true)().Status; got != StatusDegraded {
		t.Fatalf("optional missing file should be degraded, got %s", got)
	}
	if got := FileHealthCheck(path, false)().Status; got != StatusUnhealthy {
		t.Fatalf("required missing file should be unhealthy, got %s", got)
	}
	if err := os.WriteFile(path, []byte("id\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := FileHealthCheck(path, false)().Status; got != StatusHealthy {
		t.Fatalf("existing file should be healthy, got %s", got)
	}
}

func TestProcessHealthCheck(t *testing.T) {
	if got := ProcessHealthCheck("gost", func() (bool, error) { return true, nil })().Status; got != StatusHealthy {
		t.Fatalf("expected healthy, got %s", got)
	}
	if got := ProcessHealthCheck("gost", func() (bool, error) { return false, errors.New("ps failed") })().Status; got != StatusDegraded {
		t.Fatalf("expected degraded on probe error, got %s", got)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	res := ConfigurationHealthCheck(map[string]string{"A": "x", "B": ""})()
	if res.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", res.Status)
	}
}
