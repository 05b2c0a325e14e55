package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ywang1110/SentimentSense/internal/domain/service"
	"github.com/ywang1110/SentimentSense/internal/infrastructure/config"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// HealthState is the severity of a health check result
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// severity orders health states so the overall status is the maximum
// across components
func severity(s HealthState) int {
	switch s {
	case HealthStateUnhealthy:
		return 2
	case HealthStateDegraded:
		return 1
	default:
		return 0
	}
}

// ComponentHealth is one sub-check result. Sub-check failures are
// reported, never thrown.
type ComponentHealth struct {
	Name         string                 `json:"name"`
	Status       HealthState            `json:"status"`
	Message      string                 `json:"message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	ResponseTime float64                `json:"response_time"`
}

// HealthStatus is the full health check response, recomputed per query
type HealthStatus struct {
	Status     HealthState       `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Uptime     float64           `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

// SimpleHealthStatus is the cheap liveness response
type SimpleHealthStatus struct {
	Status      HealthState `json:"status"`
	ModelLoaded bool        `json:"model_loaded"`
	ModelState  string      `json:"model_state"`
	Version     string      `json:"version"`
	Uptime      float64     `json:"uptime"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	classifier service.Classifier
	redis      *redis.Client
	cfg        *config.HealthConfig
	modelName  string
	startTime  time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(classifier service.Classifier, redisClient *redis.Client, cfg *config.HealthConfig, modelName string) *HealthHandler {
	return &HealthHandler{
		classifier: classifier,
		redis:      redisClient,
		cfg:        cfg,
		modelName:  modelName,
		startTime:  time.Now(),
	}
}

// Health handles GET /health: the full readiness check. It exercises the
// backend and the resource thresholds; orchestrators should point
// readiness probes here. Only an unhealthy aggregate yields 503 so that a
// long model warm-up (degraded) does not flap the instance out of
// rotation during startup windows.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if h.cfg.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.CheckTimeout)
		defer cancel()
	}

	components := []ComponentHealth{
		h.checkModel(ctx),
		h.checkMemory(),
		h.checkCache(ctx),
	}

	overall := HealthStateHealthy
	for _, comp := range components {
		if severity(comp.Status) > severity(overall) {
			overall = comp.Status
		}
	}

	httpStatus := http.StatusOK
	if overall == HealthStateUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:     overall,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    Version,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: components,
	})
}

// HealthSimple handles GET /health/simple: the cheap liveness check.
// It never touches the backend, so it stays fast even while the model is
// loading; liveness probes should poll this endpoint.
func (h *HealthHandler) HealthSimple(c *gin.Context) {
	state := h.classifier.State()

	status := HealthStateHealthy
	if state == service.StateFailed {
		status = HealthStateUnhealthy
	}

	c.JSON(http.StatusOK, SimpleHealthStatus{
		Status:      status,
		ModelLoaded: state == service.StateReady,
		ModelState:  string(state),
		Version:     Version,
		Uptime:      time.Since(h.startTime).Seconds(),
	})
}

func (h *HealthHandler) checkModel(ctx context.Context) ComponentHealth {
	start := time.Now()
	state := h.classifier.State()

	switch state {
	case service.StateUninitialized, service.StateLoading:
		return ComponentHealth{
			Name:         "model",
			Status:       HealthStateDegraded,
			Message:      "model is loading",
			Details:      map[string]interface{}{"model_name": h.modelName, "state": string(state)},
			ResponseTime: time.Since(start).Seconds(),
		}
	case service.StateFailed:
		return ComponentHealth{
			Name:         "model",
			Status:       HealthStateUnhealthy,
			Message:      "model failed to load",
			Details:      map[string]interface{}{"model_name": h.modelName, "state": string(state)},
			ResponseTime: time.Since(start).Seconds(),
		}
	}

	if err := h.classifier.Healthcheck(ctx); err != nil {
		return ComponentHealth{
			Name:         "model",
			Status:       HealthStateUnhealthy,
			Message:      "model loaded but backend probe failed: " + err.Error(),
			Details:      map[string]interface{}{"model_name": h.modelName, "state": string(state)},
			ResponseTime: time.Since(start).Seconds(),
		}
	}

	return ComponentHealth{
		Name:         "model",
		Status:       HealthStateHealthy,
		Message:      "model is loaded and functional",
		Details:      map[string]interface{}{"model_name": h.modelName, "state": string(state)},
		ResponseTime: time.Since(start).Seconds(),
	}
}

func (h *HealthHandler) checkMemory() ComponentHealth {
	start := time.Now()

	vm, err := mem.VirtualMemory()
	if err != nil {
		return ComponentHealth{
			Name:         "memory",
			Status:       HealthStateDegraded,
			Message:      "memory check failed: " + err.Error(),
			ResponseTime: time.Since(start).Seconds(),
		}
	}

	status := HealthStateHealthy
	message := "memory usage normal"
	switch {
	case vm.UsedPercent >= h.cfg.MemoryCriticalPercent:
		status = HealthStateUnhealthy
		message = "memory usage critical"
	case vm.UsedPercent >= h.cfg.MemoryWarnPercent:
		status = HealthStateDegraded
		message = "memory usage elevated"
	}

	return ComponentHealth{
		Name:    "memory",
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"total":   vm.Total,
			"used":    vm.Used,
			"percent": vm.UsedPercent,
		},
		ResponseTime: time.Since(start).Seconds(),
	}
}

func (h *HealthHandler) checkCache(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redis == nil {
		return ComponentHealth{
			Name:         "cache",
			Status:       HealthStateHealthy,
			Message:      "not configured",
			ResponseTime: time.Since(start).Seconds(),
		}
	}

	// the cache is best-effort, so an unreachable redis degrades but
	// never fails the instance
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{
			Name:         "cache",
			Status:       HealthStateDegraded,
			Message:      "redis unreachable: " + err.Error(),
			ResponseTime: time.Since(start).Seconds(),
		}
	}

	return ComponentHealth{
		Name:         "cache",
		Status:       HealthStateHealthy,
		Message:      "ok",
		ResponseTime: time.Since(start).Seconds(),
	}
}
