package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/mem"
)

// Collector owns the service's prometheus metrics. It registers them on its
// own registry so tests and a dedicated metrics listener get a clean view.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	activeRequests    prometheus.Gauge
	inferenceTotal    *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	modelLoaded       prometheus.Gauge
	memoryUsage       prometheus.Gauge
}

// NewCollector creates a Collector with all metrics registered
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active HTTP requests",
		}),
		inferenceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_inference_total",
			Help: "Total model inferences",
		}, []string{"model_name", "sentiment"}),
		inferenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "model_inference_duration_seconds",
			Help:    "Model inference duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"model_name"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total errors",
		}, []string{"error_type", "endpoint"}),
		modelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether the model is loaded (1) or not (0)",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memory_usage_bytes",
			Help: "Memory usage in bytes",
		}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.activeRequests,
		c.inferenceTotal,
		c.inferenceDuration,
		c.errorsTotal,
		c.modelLoaded,
		c.memoryUsage,
	)

	return c
}

// RecordRequest records one completed HTTP request
func (c *Collector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, endpoint, statusCodeLabel(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RequestStarted marks a request as in flight; the returned func marks it done
func (c *Collector) RequestStarted() func() {
	c.activeRequests.Inc()
	return c.activeRequests.Dec
}

// RecordInference records one model inference with its outcome
func (c *Collector) RecordInference(modelName, sentiment string, duration time.Duration) {
	c.inferenceTotal.WithLabelValues(modelName, sentiment).Inc()
	c.inferenceDuration.WithLabelValues(modelName).Observe(duration.Seconds())
}

// RecordError records one error by type and endpoint
func (c *Collector) RecordError(errorType, endpoint string) {
	c.errorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// SetModelLoaded records whether the classification backend is ready
func (c *Collector) SetModelLoaded(loaded bool) {
	if loaded {
		c.modelLoaded.Set(1)
	} else {
		c.modelLoaded.Set(0)
	}
}

// Handler returns the text-exposition handler for GET /metrics.
// System memory is sampled on every scrape.
func (c *Collector) Handler() http.Handler {
	inner := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if vm, err := mem.VirtualMemory(); err == nil {
			c.memoryUsage.Set(float64(vm.Used))
		}
		inner.ServeHTTP(w, r)
	})
}

// Registry exposes the underlying registry for gathering in tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func statusCodeLabel(code int) string {
	return strconv.Itoa(code)
}
