package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"textorder/internal/logger"
	"textorder/internal/models"
	"textorder/internal/monitoring"
	"textorder/internal/parser"
)

// Metric names reported for every evaluation
const (
	MetricRestaurantAccuracy = "restaurant_accuracy"
	MetricItemPrecision      = "item_precision"
	MetricItemRecall         = "item_recall"
	MetricQuantityAccuracy   = "quantity_accuracy"
	MetricSizeAccuracy       = "size_accuracy"
	MetricModifierAccuracy   = "modifier_accuracy"
	MetricExactMatch         = "exact_match"
	MetricLatencyMS          = "latency_ms"
)

// ErrUnknownScenario is returned for a scenario id that is not loaded
var ErrUnknownScenario = errors.New("unknown scenario")

// Evaluator runs order parsers against scenarios with known answers and
// scores how close each parsed order comes.
type Evaluator struct {
	scenarios map[string]*TestScenario
	order     []string
	collector *MetricsCollector
	monitor   *monitoring.Monitor
	logger    *logger.Logger
}

// EvaluationResult is the outcome of one parser on one scenario
type EvaluationResult struct {
	Parser   string             `json:"parser"`
	Scenario string             `json:"scenario"`
	Metrics  map[string]float64 `json:"metrics"`
	Order    *models.Order      `json:"order,omitempty"`
	Error    string             `json:"error,omitempty"`
	Events   []EventLog         `json:"events,omitempty"`
}

// EventLog captures what happened during one evaluation
type EventLog struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithCollector reports scores to Prometheus
func WithCollector(c *MetricsCollector) Option {
	return func(e *Evaluator) { e.collector = c }
}

// WithMonitor records scores in the stats snapshot
func WithMonitor(m *monitoring.Monitor) Option {
	return func(e *Evaluator) { e.monitor = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithScenarios replaces the built-in scenarios
func WithScenarios(scenarios ...*TestScenario) Option {
	return func(e *Evaluator) {
		e.scenarios = make(map[string]*TestScenario)
		e.order = nil
		for _, s := range scenarios {
			e.add(s)
		}
	}
}

// NewEvaluator creates an evaluator loaded with the built-in scenarios
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		scenarios: make(map[string]*TestScenario),
		logger:    logger.Nop(),
	}
	for _, s := range builtinScenarios() {
		e.add(s)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) add(s *TestScenario) {
	if _, exists := e.scenarios[s.ID]; !exists {
		e.order = append(e.order, s.ID)
	}
	e.scenarios[s.ID] = s
}

// HasScenario checks if a scenario exists
func (e *Evaluator) HasScenario(id string) bool {
	_, exists := e.scenarios[id]
	return exists
}

// GetScenarios returns all scenarios in load order
func (e *Evaluator) GetScenarios() []*TestScenario {
	scenarios := make([]*TestScenario, 0, len(e.order))
	for _, id := range e.order {
		scenarios = append(scenarios, e.scenarios[id])
	}
	return scenarios
}

// EvaluateParser runs one parser on one scenario. A parser error is part of
// the result, not an error of the evaluation.
func (e *Evaluator) EvaluateParser(ctx context.Context, name string, p parser.OrderParser, scenarioID string) (*EvaluationResult, error) {
	scenario, exists := e.scenarios[scenarioID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, scenarioID)
	}

	result := &EvaluationResult{Parser: name, Scenario: scenarioID}
	result.log("parse_started", map[string]interface{}{"text": scenario.Text})

	start := time.Now()
	order, err := p.Parse(ctx, scenario.Text)
	latency := time.Since(start)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		result.Error = err.Error()
		result.Metrics = zeroMetrics()
		result.log("parse_failed", map[string]interface{}{"error": err.Error()})
	} else {
		result.Order = order
		result.Metrics = Score(scenario, order)
		result.log("parse_completed", map[string]interface{}{
			"items": order.ItemCount,
			"total": order.Total.String(),
		})
		result.logLines(scenario, order)
	}
	result.Metrics[MetricLatencyMS] = float64(latency.Microseconds()) / 1000

	e.record(result)
	e.logger.Info("evaluation_completed", map[string]any{
		"parser":      name,
		"scenario":    scenarioID,
		"exact_match": result.Metrics[MetricExactMatch],
	})
	return result, nil
}

// EvaluateAll runs one parser on every scenario
func (e *Evaluator) EvaluateAll(ctx context.Context, name string, p parser.OrderParser) ([]*EvaluationResult, error) {
	results := make([]*EvaluationResult, 0, len(e.order))
	for _, id := range e.order {
		result, err := e.EvaluateParser(ctx, name, p, id)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Evaluator) record(result *EvaluationResult) {
	if e.monitor != nil {
		e.monitor.RecordEvaluationResult(result.Parser, result.Scenario, result.Metrics)
	}
	if e.collector != nil {
		for metric, value := range result.Metrics {
			e.collector.RecordScore(result.Parser, metric, value)
		}
	}
}

func (r *EvaluationResult) log(eventType string, data map[string]interface{}) {
	r.Events = append(r.Events, EventLog{Timestamp: time.Now(), Type: eventType, Data: data})
}

func (r *EvaluationResult) logLines(s *TestScenario, order *models.Order) {
	pairs, unexpected := pairLines(s.Expected, order.Items)
	for i, want := range s.Expected {
		if pairs[i] < 0 {
			r.log("line_missed", map[string]interface{}{"item_id": want.ItemID})
			continue
		}
		r.log("line_matched", map[string]interface{}{"item_id": want.ItemID})
	}
	for _, j := range unexpected {
		r.log("line_unexpected", map[string]interface{}{"item_id": order.Items[j].ItemID})
	}
}

// Average returns the mean of every metric across results
func Average(results []*EvaluationResult) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for k, v := range r.Metrics {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(results))
	}
	return out
}

// MetricNames lists the reported metrics in a stable order
func MetricNames() []string {
	return []string{
		MetricRestaurantAccuracy, MetricItemPrecision, MetricItemRecall,
		MetricQuantityAccuracy, MetricSizeAccuracy, MetricModifierAccuracy,
		MetricExactMatch, MetricLatencyMS,
	}
}

func zeroMetrics() map[string]float64 {
	m := make(map[string]float64)
	for _, name := range MetricNames() {
		m[name] = 0
	}
	return m
}

// Score compares a parsed order with what the scenario expects. Every
// metric is in [0, 1].
func Score(s *TestScenario, order *models.Order) map[string]float64 {
	pairs, _ := pairLines(s.Expected, order.Items)

	matched, quantityOK, sizeOK, modsOK := 0, 0, 0, 0
	for i, j := range pairs {
		if j < 0 {
			continue
		}
		want, got := s.Expected[i], order.Items[j]
		matched++
		if want.Quantity == got.Quantity {
			quantityOK++
		}
		if sameSize(want.Size, got.Size) {
			sizeOK++
		}
		if sameSet(want.Modifications, got.Modifications) {
			modsOK++
		}
	}

	gotRestaurant := ""
	if order.Restaurant != nil {
		gotRestaurant = order.Restaurant.ID
	}

	m := map[string]float64{
		MetricRestaurantAccuracy: boolScore(gotRestaurant == s.Restaurant),
		MetricItemPrecision:      ratio(matched, len(order.Items)),
		MetricItemRecall:         ratio(matched, len(s.Expected)),
		MetricQuantityAccuracy:   pairRatio(quantityOK, matched, len(s.Expected)+len(order.Items)),
		MetricSizeAccuracy:       pairRatio(sizeOK, matched, len(s.Expected)+len(order.Items)),
		MetricModifierAccuracy:   pairRatio(modsOK, matched, len(s.Expected)+len(order.Items)),
	}

	exact := 1.0
	for _, v := range m {
		if v < 1 {
			exact = 0
		}
	}
	m[MetricExactMatch] = exact
	return m
}

// pairLines pairs each expected line with the first unused order line of the
// same item; unpaired expected lines get -1
func pairLines(expected []ExpectedLine, items []models.LineItem) ([]int, []int) {
	used := make([]bool, len(items))
	pairs := make([]int, len(expected))
	for i, want := range expected {
		pairs[i] = -1
		for j, got := range items {
			if !used[j] && got.ItemID == want.ItemID {
				pairs[i] = j
				used[j] = true
				break
			}
		}
	}
	var unexpected []int
	for j := range items {
		if !used[j] {
			unexpected = append(unexpected, j)
		}
	}
	return pairs, unexpected
}

func ratio(n, of int) float64 {
	if of == 0 {
		return 1
	}
	return float64(n) / float64(of)
}

// pairRatio scores matched pairs; with nothing on either side the score is 1
func pairRatio(ok, pairs, lines int) float64 {
	if pairs == 0 {
		return boolScore(lines == 0)
	}
	return float64(ok) / float64(pairs)
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func sameSize(want models.Size, got *models.Size) bool {
	if want == "" {
		return got == nil
	}
	return got != nil && *got == want
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
