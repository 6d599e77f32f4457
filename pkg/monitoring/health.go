package monitoring

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult represents the result of an individual health check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	service string
	version string
	mu      sync.RWMutex
	checks  map[string]HealthCheck
}

// HealthCheck is a function that performs a health check
type HealthCheck func() CheckResult

// NewHealthChecker creates a new health checker instance
func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		service: service,
		version: version,
		checks:  make(map[string]HealthCheck),
	}
}

// AddCheck adds a health check to the checker
func (hc *HealthChecker) AddCheck(name string, check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// CheckHealth runs all health checks and returns the overall status
func (hc *HealthChecker) CheckHealth() HealthStatus {
	status := HealthStatus{
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: time.Now().Unix(),
		Checks:    make(map[string]CheckResult),
	}

	hc.mu.RLock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]HealthCheck, 0, len(names))
	for _, name := range names {
		checks = append(checks, hc.checks[name])
	}
	hc.mu.RUnlock()

	anyUnhealthy := false
	anyDegraded := false
	for i, name := range names {
		result := checks[i]()
		status.Checks[name] = result
		switch result.Status {
		case StatusHealthy:
		case StatusDegraded:
			anyDegraded = true
		case StatusUnhealthy:
			anyUnhealthy = true
		default:
			anyUnhealthy = true
		}
	}

	switch {
	case anyUnhealthy:
		status.Status = StatusUnhealthy
	case anyDegraded:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}

	return status
}

// Handler returns a middleware handler for the health check endpoint
func (hc *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := hc.CheckHealth()
		statusCode := http.StatusOK
		if health.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}

// Common Health Check Functions

// ConfigurationHealthCheck creates a health check for required configuration
func ConfigurationHealthCheck(configs map[string]string) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		missing := []string{}

		for key, value := range configs {
			if value == "" {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)

		if len(missing) > 0 {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("Missing required configuration: %v", missing),
				Latency: time.Since(start).String(),
			}
		}

		return CheckResult{
			Status:  StatusHealthy,
			Message: "All required configuration present",
			Latency: time.Since(start).String(),
		}
	}
}

// DirectoryHealthCheck reports unhealthy when path is missing or not a directory.
func DirectoryHealthCheck(path string) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		info, err := os.Stat(path)
		if err != nil {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s not accessible: %v", path, err),
				Latency: time.Since(start).String(),
			}
		}
		if !info.IsDir() {
			return CheckResult{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s is not a directory", path),
				Latency: time.Since(start).String(),
			}
		}
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%s accessible", path),
			Latency: time.Since(start).String(),
		}
	}
}

// FileHealthCheck reports on a flat file. A missing file is degraded when
// optional is set (it is created on first write), unhealthy otherwise.
func FileHealthCheck(path string, optional bool) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		f, err := os.Open(path)
		if err != nil {
			status := StatusUnhealthy
			if optional && os.IsNotExist(err) {
				status = StatusDegraded
			}
			return CheckResult{
				Status:  status,
				Message: fmt.Sprintf("%s not readable: %v", path, err),
				Latency: time.Since(start).String(),
			}
		}
		_ = f.Close()
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%s readable", path),
			Latency: time.Since(start).String(),
		}
	}
}

// ProcessHealthCheck maps a running probe onto healthy/degraded. A stopped
// process is not fatal for the service itself.
func ProcessHealthCheck(name string, running func() (bool, error)) HealthCheck {
	return func() CheckResult {
		start := time.Now()
		ok, err := running()
		switch {
		case err != nil:
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%s state unknown: %v", name, err),
				Latency: time.Since(start).String(),
			}
		case !ok:
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%s not running", name),
				Latency: time.Since(start).String(),
			}
		}
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("%s running", name),
			Latency: time.Since(start).String(),
		}
	}
}
