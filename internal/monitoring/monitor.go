package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps an in-process snapshot of parse and evaluation metrics for
// the stats endpoint and the playground
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+1)
	for k, v := range m.metrics {
		metrics[k] = v
	}
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordParse counts one parse by the named parser
func (m *Monitor) RecordParse(parser string, ok bool, items int, duration time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := parser + "_"
	m.add(prefix+"parses_total", 1)
	if !ok {
		m.add(prefix+"failures_total", 1)
	}
	m.add(prefix+"items_total", int64(items))
	m.metrics[prefix+"last_duration_ms"] = float64(duration.Microseconds()) / 1000
}

// add increments an integer counter; callers hold the lock
func (m *Monitor) add(name string, delta int64) {
	current, _ := m.metrics[name].(int64)
	m.metrics[name] = current + delta
}

// RecordEvaluationResult records metrics from an evaluation result
func (m *Monitor) RecordEvaluationResult(parser string, scenario string, metrics map[string]float64) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := parser + "_" + scenario + "_"

	for k, v := range metrics {
		m.metrics[prefix+k] = v
	}

	m.metrics[prefix+"last_evaluated"] = time.Now().Format(time.RFC3339)
}
