package processing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorder/internal/catalog"
	"textorder/internal/evaluation"
	"textorder/internal/models"
	"textorder/internal/monitoring"
	"textorder/internal/parser"
)

const tacoOrder = "two crunchwrap supremes with extra sour cream and a large baja blast"

type stubParser struct {
	order *models.Order
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubParser) Parse(ctx context.Context, text string) (*models.Order, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.order, s.err
}

func ruleParser() *parser.RuleParser {
	return parser.New(catalog.Default())
}

func mustParse(t *testing.T, text string) *models.Order {
	t.Helper()
	order, err := ruleParser().ParseOrderText(text)
	require.NoError(t, err)
	return order
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeRule, "rule": ModeRule, "llm": ModeLLM, "both": ModeBoth} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("gpt")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestProcess_RuleMode(t *testing.T) {
	p := New(ruleParser())

	result, err := p.Process(context.Background(), tacoOrder, ModeRule)
	require.NoError(t, err)

	require.NotNil(t, result.RuleOrder)
	assert.Nil(t, result.LLMOrder)
	assert.Nil(t, result.Comparison)
	assert.Equal(t, models.Money(1520), result.Preferred().Total)
	assert.Equal(t, "rule", result.PreferredParser())
	assert.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "rule: found 2 items")
}

func TestProcess_InputErrors(t *testing.T) {
	p := New(ruleParser(), WithLLM(&stubParser{order: &models.Order{}}))

	for _, mode := range []Mode{ModeRule, ModeBoth} {
		_, err := p.Process(context.Background(), "   ", mode)
		assert.ErrorIs(t, err, models.ErrEmptyInput, "mode %s", mode)
	}
}

func TestProcess_LLMUnavailable(t *testing.T) {
	p := New(ruleParser())
	assert.False(t, p.HasLLM())

	_, err := p.Process(context.Background(), tacoOrder, ModeLLM)
	assert.ErrorIs(t, err, ErrParserUnavailable)

	result, err := p.Process(context.Background(), tacoOrder, ModeBoth)
	require.NoError(t, err)
	assert.Contains(t, result.Notes, "llm parser not available")
	assert.Equal(t, "rule", result.PreferredParser())
}

func TestProcess_UnknownMode(t *testing.T) {
	_, err := New(ruleParser()).Process(context.Background(), tacoOrder, Mode("fast"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestProcess_LLMModeReturnsParserError(t *testing.T) {
	boom := errors.New("provider down")
	p := New(ruleParser(), WithLLM(&stubParser{err: boom}))

	_, err := p.Process(context.Background(), tacoOrder, ModeLLM)
	assert.ErrorIs(t, err, boom)
}

func TestProcess_BothRunsConcurrentlyAndCompares(t *testing.T) {
	llmOrder := mustParse(t, "two crunchwrap supremes")
	llm := &stubParser{order: llmOrder, delay: 20 * time.Millisecond}
	collector := evaluation.NewMetricsCollector()
	monitor := monitoring.NewMonitor()
	p := New(ruleParser(), WithLLM(llm), WithCollector(collector), WithMonitor(monitor))

	result, err := p.Process(context.Background(), tacoOrder, ModeBoth)
	require.NoError(t, err)

	require.NotNil(t, result.RuleOrder)
	require.NotNil(t, result.LLMOrder)
	assert.Same(t, llmOrder, result.Preferred())
	assert.Equal(t, "llm", result.PreferredParser())
	assert.GreaterOrEqual(t, result.LLMDuration, 20*time.Millisecond)
	assert.Equal(t, result.LLMDuration, result.Duration())
	assert.Len(t, result.Notes, 2)

	c := result.Comparison
	require.NotNil(t, c)
	assert.Equal(t, 2, c.RuleItems)
	assert.Equal(t, 1, c.LLMItems)
	assert.Equal(t, []string{"Baja Blast"}, c.RuleOnly)
	assert.Empty(t, c.LLMOnly)
	assert.Equal(t, result.RuleOrder.Total-llmOrder.Total, c.PriceDifference)
	assert.True(t, c.Significant)
	assert.False(t, c.Agree())

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.ParseCounter().WithLabelValues("rule", evaluation.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.ParseCounter().WithLabelValues("llm", evaluation.OutcomeSuccess)))
	parses, _ := monitor.GetMetric("llm_parses_total")
	assert.Equal(t, int64(1), parses)
}

func TestProcess_BothKeepsRuleOrderWhenLLMFails(t *testing.T) {
	p := New(ruleParser(), WithLLM(&stubParser{err: errors.New("timeout")}))

	result, err := p.Process(context.Background(), tacoOrder, ModeBoth)
	require.NoError(t, err)

	assert.Nil(t, result.LLMOrder)
	assert.Equal(t, "timeout", result.LLMError)
	assert.Nil(t, result.Comparison)
	assert.Equal(t, "rule", result.PreferredParser())
	assert.Contains(t, result.Notes, "llm error: timeout")
}

func TestProcess_BothFailsWhenEveryParserFails(t *testing.T) {
	ruleErr := errors.New("rule broke")
	llmErr := errors.New("llm broke")
	p := New(&stubParser{err: ruleErr}, WithLLM(&stubParser{err: llmErr}))

	_, err := p.Process(context.Background(), tacoOrder, ModeBoth)
	assert.ErrorIs(t, err, ruleErr)
	assert.ErrorIs(t, err, llmErr)
}

func TestProcess_BothHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	p := New(ruleParser(), WithLLM(&stubParser{order: &models.Order{}, delay: time.Hour}))

	_, err := p.Process(ctx, tacoOrder, ModeBoth)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompare(t *testing.T) {
	a := mustParse(t, "a big mac and a medium coke")
	b := mustParse(t, "a big mac and a large coke")

	c := Compare(a, b)
	assert.True(t, c.Agree())
	assert.Empty(t, c.RuleOnly)
	assert.False(t, c.Significant)
	assert.LessOrEqual(t, c.PriceDifference, SignificantPriceDifference)

	c = Compare(a, nil)
	assert.Equal(t, len(a.Items), c.RuleItems)
	assert.Zero(t, c.LLMItems)
	assert.True(t, c.Agree())
}
