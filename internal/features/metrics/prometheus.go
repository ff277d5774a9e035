package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusProvider implements a Prometheus metrics provider
type PrometheusProvider struct {
	name     string
	registry *prometheus.Registry

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec

	mu sync.Mutex

	config PrometheusConfig
}

// PrometheusConfig holds configuration for Prometheus metrics
type PrometheusConfig struct {
	// Namespace for all metrics (e.g., "mcpdemo")
	Namespace string

	// Subsystem for metrics (e.g., "server")
	Subsystem string

	// Default labels to add to all metrics
	DefaultLabels prometheus.Labels

	// Histogram buckets for duration metrics
	DurationBuckets []float64

	// Histogram buckets for size metrics
	SizeBuckets []float64
}

// NewPrometheus creates a new Prometheus metrics provider with default configuration
func NewPrometheus(name string) *PrometheusProvider {
	return NewPrometheusWithConfig(name, PrometheusConfig{
		Namespace:       "mcpdemo",
		Subsystem:       "server",
		DurationBuckets: prometheus.DefBuckets,
		SizeBuckets:     []float64{100, 1024, 10240, 102400, 1048576},
	})
}

// NewPrometheusWithConfig creates a new Prometheus metrics provider with custom configuration
func NewPrometheusWithConfig(name string, config PrometheusConfig) *PrometheusProvider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	if len(config.DurationBuckets) == 0 {
		config.DurationBuckets = prometheus.DefBuckets
	}

	return &PrometheusProvider{
		name:       name,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		config:     config,
	}
}

func (pmp *PrometheusProvider) Name() string {
	return pmp.name
}

func (pmp *PrometheusProvider) RecordCounter(name string, value int64, labels map[string]string) {
	counter := pmp.getOrCreateCounter(name, pmp.allLabelKeys(labels))
	counter.With(pmp.mergeLabels(labels)).Add(float64(value))
}

func (pmp *PrometheusProvider) RecordGauge(name string, value float64, labels map[string]string) {
	gauge := pmp.getOrCreateGauge(name, pmp.allLabelKeys(labels))
	gauge.With(pmp.mergeLabels(labels)).Set(value)
}

func (pmp *PrometheusProvider) RecordHistogram(name string, value float64, labels map[string]string) {
	histogram := pmp.getOrCreateHistogram(name, pmp.allLabelKeys(labels))
	histogram.With(pmp.mergeLabels(labels)).Observe(value)
}

func (pmp *PrometheusProvider) getOrCreateCounter(name string, labelNames []string) *prometheus.CounterVec {
	pmp.mu.Lock()
	defer pmp.mu.Unlock()

	if counter, exists := pmp.counters[name]; exists {
		return counter
	}

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: pmp.config.Namespace,
			Subsystem: pmp.config.Subsystem,
			Name:      name,
			Help:      fmt.Sprintf("Counter metric for %s", name),
		},
		labelNames,
	)

	pmp.registry.MustRegister(counter)
	pmp.counters[name] = counter
	return counter
}

func (pmp *PrometheusProvider) getOrCreateGauge(name string, labelNames []string) *prometheus.GaugeVec {
	pmp.mu.Lock()
	defer pmp.mu.Unlock()

	if gauge, exists := pmp.gauges[name]; exists {
		return gauge
	}

	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: pmp.config.Namespace,
			Subsystem: pmp.config.Subsystem,
			Name:      name,
			Help:      fmt.Sprintf("Gauge metric for %s", name),
		},
		labelNames,
	)

	pmp.registry.MustRegister(gauge)
	pmp.gauges[name] = gauge
	return gauge
}

func (pmp *PrometheusProvider) getOrCreateHistogram(name string, labelNames []string) *prometheus.HistogramVec {
	pmp.mu.Lock()
	defer pmp.mu.Unlock()

	if histogram, exists := pmp.histograms[name]; exists {
		return histogram
	}

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: pmp.config.Namespace,
			Subsystem: pmp.config.Subsystem,
			Name:      name,
			Help:      fmt.Sprintf("Histogram metric for %s", name),
			Buckets:   pmp.bucketsForMetric(name),
		},
		labelNames,
	)

	pmp.registry.MustRegister(histogram)
	pmp.histograms[name] = histogram
	return histogram
}

// bucketsForMetric picks histogram buckets based on the metric name.
func (pmp *PrometheusProvider) bucketsForMetric(name string) []float64 {
	if strings.Contains(name, "duration") || strings.Contains(name, "latency") || strings.Contains(name, "seconds") {
		return pmp.config.DurationBuckets
	}
	if strings.Contains(name, "size") || strings.Contains(name, "bytes") {
		return pmp.config.SizeBuckets
	}
	return prometheus.DefBuckets
}

// mergeLabels merges user labels with default labels
func (pmp *PrometheusProvider) mergeLabels(userLabels map[string]string) prometheus.Labels {
	merged := make(prometheus.Labels, len(pmp.config.DefaultLabels)+len(userLabels))
	for k, v := range pmp.config.DefaultLabels {
		merged[k] = v
	}
	for k, v := range userLabels {
		merged[k] = v
	}
	return merged
}

// allLabelKeys extracts the union of default and user label keys
func (pmp *PrometheusProvider) allLabelKeys(userLabels map[string]string) []string {
	keyMap := make(map[string]bool, len(pmp.config.DefaultLabels)+len(userLabels))
	for k := range pmp.config.DefaultLabels {
		keyMap[k] = true
	}
	for k := range userLabels {
		keyMap[k] = true
	}

	keys := make([]string, 0, len(keyMap))
	for k := range keyMap {
		keys = append(keys, k)
	}
	return keys
}

// HTTPHandler returns the Prometheus scrape handler for embedding in an
// existing HTTP server (the streamable HTTP transport mounts this).
func (pmp *PrometheusProvider) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(pmp.registry, promhttp.HandlerOpts{
		Registry:          pmp.registry,
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying Prometheus registry
func (pmp *PrometheusProvider) Registry() *prometheus.Registry {
	return pmp.registry
}

// RecordToolExecution records MCP tool execution metrics
func (pmp *PrometheusProvider) RecordToolExecution(tool, status string, duration float64) {
	pmp.RecordCounter("tool_executions_total", 1, map[string]string{
		"tool":   tool,
		"status": status,
	})
	pmp.RecordHistogram("tool_execution_duration_seconds", duration, map[string]string{
		"tool":   tool,
		"status": status,
	})
}

func (pmp *PrometheusProvider) Close() error {
	return nil
}
