package monitoring

import (
	"sync"
	"testing"
	"time"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	if _, exists = metrics["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordEvaluationResult(t *testing.T) {
	m := NewMonitor()

	m.RecordEvaluationResult("rule", "mcd_combo", map[string]float64{
		"item_recall": 0.85,
		"latency_ms":  1.5,
	})

	metrics := m.GetMetrics()

	value, exists := metrics["rule_mcd_combo_item_recall"]
	if !exists {
		t.Fatalf("Expected 'rule_mcd_combo_item_recall' to be present in metrics, but it was not")
	}
	if value != 0.85 {
		t.Errorf("Expected 'rule_mcd_combo_item_recall' to be 0.85, but got %v", value)
	}

	if _, exists = metrics["rule_mcd_combo_last_evaluated"]; !exists {
		t.Errorf("Expected 'rule_mcd_combo_last_evaluated' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordParse(t *testing.T) {
	m := NewMonitor()

	m.RecordParse("rule", true, 3, 2*time.Millisecond)
	m.RecordParse("rule", false, 0, time.Millisecond)
	m.RecordParse("llm", true, 1, time.Second)

	if v, _ := m.GetMetric("rule_parses_total"); v != int64(2) {
		t.Errorf("rule_parses_total = %v, want 2", v)
	}
	if v, _ := m.GetMetric("rule_failures_total"); v != int64(1) {
		t.Errorf("rule_failures_total = %v, want 1", v)
	}
	if v, _ := m.GetMetric("rule_items_total"); v != int64(3) {
		t.Errorf("rule_items_total = %v, want 3", v)
	}
	if v, _ := m.GetMetric("rule_last_duration_ms"); v != 1.0 {
		t.Errorf("rule_last_duration_ms = %v, want 1", v)
	}
	if _, exists := m.GetMetric("llm_failures_total"); exists {
		t.Errorf("llm_failures_total should not be recorded without failures")
	}
}

func TestMonitor_ConcurrentParses(t *testing.T) {
	m := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordParse("rule", true, 1, time.Millisecond)
			_ = m.GetMetrics()
		}()
	}
	wg.Wait()

	if v, _ := m.GetMetric("rule_parses_total"); v != int64(50) {
		t.Errorf("rule_parses_total = %v, want 50", v)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	if _, exists := metrics["test_metric"]; exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}
	if _, exists := metrics["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
