// Package processing runs the rule and LLM parsers on the same order text,
// alone or side by side, and compares what they found.
package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"textorder/internal/evaluation"
	"textorder/internal/logger"
	"textorder/internal/models"
	"textorder/internal/monitoring"
	"textorder/internal/parser"
)

// Mode selects which parsers handle a request
type Mode string

const (
	ModeRule Mode = "rule"
	ModeLLM  Mode = "llm"
	ModeBoth Mode = "both"
)

var (
	// ErrParserUnavailable is returned when the LLM parser is requested but not configured
	ErrParserUnavailable = errors.New("parser unavailable")
	// ErrUnknownMode is returned for a mode other than rule, llm or both
	ErrUnknownMode = errors.New("unknown parser mode")
)

// ParseMode reads a mode name; empty means rule
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRule:
		return ModeRule, nil
	case ModeLLM, ModeBoth:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Result holds the outcome of every parser that ran
type Result struct {
	Mode         Mode          `json:"mode"`
	RuleOrder    *models.Order `json:"rule_order,omitempty"`
	LLMOrder     *models.Order `json:"llm_order,omitempty"`
	RuleDuration time.Duration `json:"rule_duration"`
	LLMDuration  time.Duration `json:"llm_duration"`
	RuleError    string        `json:"rule_error,omitempty"`
	LLMError     string        `json:"llm_error,omitempty"`
	Notes        []string      `json:"notes"`
	Comparison   *Comparison   `json:"comparison,omitempty"`
}

// Preferred returns the LLM order when the LLM parser succeeded, else the rule order
func (r *Result) Preferred() *models.Order {
	if r.LLMOrder != nil {
		return r.LLMOrder
	}
	return r.RuleOrder
}

// PreferredParser names the parser whose order Preferred returns
func (r *Result) PreferredParser() string {
	if r.LLMOrder != nil {
		return string(ModeLLM)
	}
	return string(ModeRule)
}

// Duration is the wall time of the slowest parser that ran
func (r *Result) Duration() time.Duration {
	if r.LLMDuration > r.RuleDuration {
		return r.LLMDuration
	}
	return r.RuleDuration
}

// Processor dispatches order text to the configured parsers
type Processor struct {
	rule      parser.OrderParser
	llm       parser.OrderParser
	collector *evaluation.MetricsCollector
	monitor   *monitoring.Monitor
	logger    *logger.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithLLM enables the llm and both modes
func WithLLM(p parser.OrderParser) Option {
	return func(pr *Processor) { pr.llm = p }
}

func WithCollector(c *evaluation.MetricsCollector) Option {
	return func(pr *Processor) { pr.collector = c }
}

func WithMonitor(m *monitoring.Monitor) Option {
	return func(pr *Processor) { pr.monitor = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(pr *Processor) { pr.logger = l }
}

// New creates a processor around the rule parser
func New(rule parser.OrderParser, opts ...Option) *Processor {
	p := &Processor{rule: rule, logger: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HasLLM reports whether the LLM parser is configured
func (p *Processor) HasLLM() bool {
	return p.llm != nil
}

// Parser returns the parser for a single mode
func (p *Processor) Parser(mode Mode) (parser.OrderParser, error) {
	switch mode {
	case ModeRule:
		return p.rule, nil
	case ModeLLM:
		if p.llm == nil {
			return nil, fmt.Errorf("%w: llm", ErrParserUnavailable)
		}
		return p.llm, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Process parses text in the given mode. In single modes the parser error is
// returned. In both mode an error is returned only for invalid input or when
// every parser failed; otherwise failures are reported in the notes.
func (p *Processor) Process(ctx context.Context, text string, mode Mode) (*Result, error) {
	result := &Result{Mode: mode, Notes: []string{}}

	switch mode {
	case ModeRule, ModeLLM:
		pr, err := p.Parser(mode)
		if err != nil {
			return nil, err
		}
		order, elapsed, err := p.run(ctx, string(mode), pr, text)
		result.set(mode, order, elapsed, err)
		if err != nil {
			return nil, err
		}
	case ModeBoth:
		if err := p.processBoth(ctx, text, result); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	p.logger.Info("order_processed", map[string]any{
		"mode":      string(mode),
		"preferred": result.PreferredParser(),
		"notes":     result.Notes,
	})
	return result, nil
}

func (p *Processor) processBoth(ctx context.Context, text string, result *Result) error {
	var (
		wg                sync.WaitGroup
		ruleOrder         *models.Order
		llmOrder          *models.Order
		ruleErr, llmErr   error
		ruleTime, llmTime time.Duration
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		ruleOrder, ruleTime, ruleErr = p.run(ctx, string(ModeRule), p.rule, text)
	}()
	if p.llm != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			llmOrder, llmTime, llmErr = p.run(ctx, string(ModeLLM), p.llm, text)
		}()
	}
	wg.Wait()

	if errors.Is(ruleErr, models.ErrInputInvalid) {
		return ruleErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result.set(ModeRule, ruleOrder, ruleTime, ruleErr)
	if p.llm == nil {
		result.Notes = append(result.Notes, "llm parser not available")
	} else {
		result.set(ModeLLM, llmOrder, llmTime, llmErr)
	}
	if ruleErr != nil && (p.llm == nil || llmErr != nil) {
		return fmt.Errorf("all parsers failed: %w", errors.Join(ruleErr, llmErr))
	}
	if ruleOrder != nil && llmOrder != nil {
		result.Comparison = Compare(ruleOrder, llmOrder)
	}
	return nil
}

func (p *Processor) run(ctx context.Context, name string, pr parser.OrderParser, text string) (*models.Order, time.Duration, error) {
	start := time.Now()
	order, err := pr.Parse(ctx, text)
	elapsed := time.Since(start)

	items := 0
	if order != nil {
		items = order.ItemCount
	}
	if p.collector != nil {
		p.collector.RecordParse(name, err, items, elapsed)
	}
	if p.monitor != nil {
		p.monitor.RecordParse(name, err == nil, items, elapsed)
	}
	if err != nil {
		p.logger.Warn("parse_failed", map[string]any{"parser": name, "error": err.Error()})
	}
	return order, elapsed, err
}

func (r *Result) set(mode Mode, order *models.Order, elapsed time.Duration, err error) {
	var note string
	switch {
	case err != nil:
		note = fmt.Sprintf("%s error: %v", mode, err)
	case order.IsEmpty():
		note = fmt.Sprintf("%s: no items found", mode)
	default:
		note = fmt.Sprintf("%s: found %d items in %s", mode, len(order.Items), elapsed.Round(time.Microsecond))
	}
	r.Notes = append(r.Notes, note)

	if mode == ModeLLM {
		r.LLMDuration = elapsed
		if err != nil {
			r.LLMError = err.Error()
			return
		}
		r.LLMOrder = order
		return
	}
	r.RuleDuration = elapsed
	if err != nil {
		r.RuleError = err.Error()
		return
	}
	r.RuleOrder = order
}
