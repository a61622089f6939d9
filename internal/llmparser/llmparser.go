// Package llmparser parses order text with a chat model and maps the reply
// back onto the catalog. Prices always come from the catalog.
package llmparser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"textorder/internal/catalog"
	"textorder/internal/logger"
	"textorder/internal/models"
	"textorder/internal/models/providers"
	"textorder/internal/parser"
)

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// Parser is an OrderParser backed by an LLM provider
type Parser struct {
	provider   providers.Provider
	catalog    *catalog.Catalog
	logger     *logger.Logger
	maxRetries int
	backoff    time.Duration
	menu       string
}

// Option configures a Parser
type Option func(*Parser)

func WithLogger(l *logger.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// WithMaxRetries sets how many completions are attempted per order
func WithMaxRetries(n int) Option {
	return func(p *Parser) { p.maxRetries = n }
}

// WithBackoff sets the wait before the first retry; it doubles on every retry
func WithBackoff(d time.Duration) Option {
	return func(p *Parser) { p.backoff = d }
}

func New(provider providers.Provider, c *catalog.Catalog, opts ...Option) *Parser {
	p := &Parser{
		provider:   provider,
		catalog:    c,
		logger:     logger.Nop(),
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxRetries < 1 {
		p.maxRetries = 1
	}
	p.menu = MenuContext(c)
	return p
}

// Name identifies the parser in results and metrics
func (p *Parser) Name() string {
	return "llm"
}

// Provider returns the backend name
func (p *Parser) Provider() string {
	return p.provider.Name()
}

// Parse implements parser.OrderParser
func (p *Parser) Parse(ctx context.Context, text string) (*models.Order, error) {
	if _, err := parser.PrepareText(text); err != nil {
		return nil, err
	}

	messages := BuildMessages(p.menu, text)
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if attempt > 1 {
			wait := p.backoff * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		order, err := p.attempt(ctx, messages)
		if err == nil {
			p.logger.Debug("llm_order_parsed", map[string]any{
				"provider": p.provider.Name(),
				"attempt":  attempt,
				"items":    order.ItemCount,
				"total":    order.Total.String(),
			})
			return order, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		p.logger.Warn("llm_attempt_failed", map[string]any{
			"provider": p.provider.Name(),
			"attempt":  attempt,
			"error":    err.Error(),
		})
	}
	return nil, fmt.Errorf("llm parse failed after %d attempts: %w", p.maxRetries, lastErr)
}

func (p *Parser) attempt(ctx context.Context, messages []providers.Message) (*models.Order, error) {
	raw, err := p.provider.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	return p.ToOrder(resp)
}

// ToOrder maps a decoded reply onto the catalog. Unknown items are dropped,
// quantities below one become one and unknown sizes become the base size.
func (p *Parser) ToOrder(resp *Response) (*models.Order, error) {
	var restaurant *models.Restaurant
	if name := strings.TrimSpace(resp.Restaurant); name != "" {
		restaurant, _ = p.catalog.FindRestaurant(name)
	}
	scope := ""
	if restaurant != nil {
		scope = restaurant.ID
	}

	lines := make([]parser.LineSpec, 0, len(resp.Items))
	for _, it := range resp.Items {
		item, ok := p.catalog.FindItem(scope, it.Name)
		if !ok {
			p.logger.Debug("llm_unknown_item", map[string]any{"name": it.Name})
			continue
		}
		lines = append(lines, parser.LineSpec{
			Item:          item,
			Quantity:      quantity(it.Quantity),
			Size:          size(item, it.Size),
			Modifications: modifications(it.Modifications),
		})
	}
	if len(lines) == 0 && len(resp.Items) > 0 {
		return nil, ErrNoItems
	}

	if restaurant == nil || !allFrom(restaurant.ID, lines) {
		restaurant = parser.InferRestaurant(p.catalog, lines)
	}
	return parser.Assemble(restaurant, lines), nil
}

// quantity rounds the reply's quantity into 1..parser.MaxQuantity
func quantity(q float64) int {
	q = math.Round(q)
	switch {
	case math.IsNaN(q) || q < 1:
		return 1
	case q > parser.MaxQuantity:
		return parser.MaxQuantity
	}
	return int(q)
}

func size(item *models.MenuItem, requested string) *models.Size {
	if !item.HasSizes() {
		return nil
	}
	if s, ok := models.ParseSize(requested); ok && item.Offers(s) {
		return &s
	}
	base := item.BaseSize
	return &base
}

func modifications(mods []Modification) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		if s := strings.TrimSpace(string(m)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func allFrom(restaurantID string, lines []parser.LineSpec) bool {
	for _, line := range lines {
		if line.Item.RestaurantID != restaurantID {
			return false
		}
	}
	return true
}
