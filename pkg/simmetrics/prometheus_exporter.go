package simmetrics

import (
	"fmt"
	"math"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"
)

// PrometheusExporter serves a Registry's Counters, Gauges and Histograms in
// Prometheus text exposition format, so `dassim serve` can be scraped while
// a single long run executes. It also emits a handful of Go runtime gauges
// (goroutines, heap size) since a sweep's worker pool is the kind of thing
// an operator watching a long run wants visibility into alongside the
// simulation's own counters.
type PrometheusExporter struct {
	config   PrometheusConfig
	registry *Registry
}

// PrometheusConfig configures the exporter's output.
type PrometheusConfig struct {
	// Namespace prefixes every metric name (e.g. "DASSIM" turns
	// "run.steps_total" into "DASSIM_run_steps_total").
	Namespace string
	// EnableRuntime controls whether Go runtime gauges are included.
	EnableRuntime bool
	// Path is the HTTP path metrics are served on.
	Path string
}

// DefaultPrometheusConfig returns the config `dassim serve` uses.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace:     "DASSIM",
		EnableRuntime: true,
		Path:          "/metrics",
	}
}

// NewPrometheusExporter builds an exporter reading from registry.
func NewPrometheusExporter(registry *Registry, config PrometheusConfig) *PrometheusExporter {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	return &PrometheusExporter{config: config, registry: registry}
}

// Handler returns an http.Handler serving the configured path.
func (pe *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(pe.config.Path, pe.handleMetrics)
	return mux
}

func (pe *PrometheusExporter) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	var b strings.Builder
	pe.writeRegistryMetrics(&b)
	if pe.config.EnableRuntime {
		pe.writeRuntimeMetrics(&b)
	}
	w.Write([]byte(b.String()))
}

func (pe *PrometheusExporter) writeRegistryMetrics(b *strings.Builder) {
	pe.registry.mu.RLock()
	defer pe.registry.mu.RUnlock()

	for _, name := range sortedKeys(pe.registry.counters) {
		c := pe.registry.counters[name]
		promName := pe.promName(name)
		writeHelpAndType(b, promName, "counter", name)
		fmt.Fprintf(b, "%s %d\n", promName, c.Value())
	}
	for _, name := range sortedKeys(pe.registry.gauges) {
		g := pe.registry.gauges[name]
		promName := pe.promName(name)
		writeHelpAndType(b, promName, "gauge", name)
		fmt.Fprintf(b, "%s %d\n", promName, g.Value())
	}
	// Histograms expose count/sum/min/max/mean as suffixed lines under one
	// summary-typed family rather than Prometheus's bucketed histogram
	// type: a run accumulates at most
	// a few hundred observations (one per completed run in a sweep), far
	// too few for buckets to be a meaningful approximation of the
	// distribution over a true quantile sketch.
	for _, name := range sortedKeys(pe.registry.histograms) {
		h := pe.registry.histograms[name]
		promName := pe.promName(name)
		writeHelpAndType(b, promName, "summary", name)
		fmt.Fprintf(b, "%s_count %d\n", promName, h.Count())
		fmt.Fprintf(b, "%s_sum %s\n", promName, formatFloat(h.Sum()))
		if h.Count() > 0 {
			fmt.Fprintf(b, "%s_min %s\n", promName, formatFloat(h.Min()))
			fmt.Fprintf(b, "%s_max %s\n", promName, formatFloat(h.Max()))
			fmt.Fprintf(b, "%s_mean %s\n", promName, formatFloat(h.Mean()))
		}
	}
}

// writeRuntimeMetrics emits goroutine count and a few heap stats under the
// configured namespace, unprefixed by a metric-family name since they
// describe the process, not the simulation.
func (pe *PrometheusExporter) writeRuntimeMetrics(b *strings.Builder) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	prefix := pe.config.Namespace
	if prefix != "" {
		prefix += "_"
	}

	goroutineName := prefix + "go_goroutines"
	writeHelpAndType(b, goroutineName, "gauge", "Number of active goroutines")
	fmt.Fprintf(b, "%s %d\n", goroutineName, runtime.NumGoroutine())

	writeMemMetric(b, prefix+"go_memstats_heap_alloc_bytes", "gauge",
		"Bytes of allocated heap objects", m.HeapAlloc)
	writeMemMetric(b, prefix+"go_memstats_heap_objects", "gauge",
		"Number of allocated heap objects", m.HeapObjects)

	gcName := prefix + "go_gc_duration_seconds_count"
	writeHelpAndType(b, gcName, "counter", "Total number of GC cycles")
	fmt.Fprintf(b, "%s %d\n", gcName, m.NumGC)

	startName := prefix + "process_start_time_seconds"
	writeHelpAndType(b, startName, "gauge", "Process start time in seconds since epoch")
	fmt.Fprintf(b, "%s %s\n", startName, formatFloat(float64(processStartTime.Unix())))
}

// promName converts a dot-separated metric name ("run.steps_total") to
// Prometheus's underscore convention, prefixed by the configured namespace.
func (pe *PrometheusExporter) promName(name string) string {
	sanitized := strings.ReplaceAll(name, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, "-", "_")
	if pe.config.Namespace != "" {
		return pe.config.Namespace + "_" + sanitized
	}
	return sanitized
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return fmt.Sprintf("%g", v)
	}
}

func writeHelpAndType(b *strings.Builder, name, metricType, help string) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, metricType)
}

func writeMemMetric(b *strings.Builder, name, metricType, help string, value uint64) {
	writeHelpAndType(b, name, metricType, help)
	fmt.Fprintf(b, "%s %d\n", name, value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// processStartTime is recorded at package init for process_start_time_seconds.
var processStartTime = time.Now()
