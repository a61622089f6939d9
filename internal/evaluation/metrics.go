package evaluation

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse outcomes used as the outcome label
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a collector with its own registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	parseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textorder_parse_duration_seconds",
			Help:    "Time taken to parse one order text",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"parser"},
	)

	parsesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textorder_parses_total",
			Help: "Order texts parsed, by outcome",
		},
		[]string{"parser", "outcome"},
	)

	itemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textorder_parsed_items_total",
			Help: "Menu items recognized across all parses",
		},
		[]string{"parser"},
	)

	scoreGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "textorder_evaluation_score",
			Help: "Latest evaluation score by metric",
		},
		[]string{"parser", "metric"},
	)

	metrics := map[string]prometheus.Collector{
		"parse_duration": parseDuration,
		"parses":         parsesTotal,
		"items":          itemsTotal,
		"score":          scoreGauge,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the registry for scraping and tests
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the collected metrics in the Prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// RecordParse records the duration and outcome of one parse
func (mc *MetricsCollector) RecordParse(parser string, err error, items int, duration time.Duration) {
	if histogram, ok := mc.metrics["parse_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(parser).Observe(duration.Seconds())
	}

	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeError
	case items == 0:
		outcome = OutcomeEmpty
	}
	if counter, ok := mc.metrics["parses"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(parser, outcome).Inc()
	}
	if counter, ok := mc.metrics["items"].(*prometheus.CounterVec); ok && items > 0 {
		counter.WithLabelValues(parser).Add(float64(items))
	}
}

// RecordScore records the latest value of an evaluation metric
func (mc *MetricsCollector) RecordScore(parser, metric string, value float64) {
	if gauge, ok := mc.metrics["score"].(*prometheus.GaugeVec); ok {
		gauge.WithLabelValues(parser, metric).Set(value)
	}
}

// ParseCounter returns the collector counting parses, for tests
func (mc *MetricsCollector) ParseCounter() *prometheus.CounterVec {
	counter, _ := mc.metrics["parses"].(*prometheus.CounterVec)
	return counter
}

// ScoreGauge returns the evaluation score gauge, for tests
func (mc *MetricsCollector) ScoreGauge() *prometheus.GaugeVec {
	gauge, _ := mc.metrics["score"].(*prometheus.GaugeVec)
	return gauge
}
