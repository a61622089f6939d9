package parser

import (
	"context"
	"time"

	"textorder/internal/catalog"
	"textorder/internal/logger"
	"textorder/internal/models"
)

// Stage names recorded in an Analysis
const (
	StageStart     = "start"
	StageDetect    = "detect"
	StageMatch     = "match"
	StageResolve   = "resolve"
	StageModifiers = "modifiers"
	StageAssemble  = "assemble"
	StageDone      = "done"
)

// StageEvent records when a parsing stage finished
type StageEvent struct {
	Stage   string         `json:"stage"`
	Elapsed time.Duration  `json:"elapsed"`
	Details map[string]any `json:"details,omitempty"`
}

// Analysis is the full trace of one rule-based parse
type Analysis struct {
	Text        *Text            `json:"-"`
	Restaurant  *RestaurantMatch `json:"restaurant"`
	Candidates  []MatchCandidate `json:"candidates"`
	Resolutions []Resolution     `json:"resolutions"`
	Lines       []LineSpec       `json:"-"`
	Order       *models.Order    `json:"order"`
	Stages      []StageEvent     `json:"stages"`
}

// RuleParser runs the rule-based stages against a catalog
type RuleParser struct {
	catalog   *catalog.Catalog
	detector  *Detector
	matcher   *Matcher
	logger    *logger.Logger
	threshold float64
}

// Option configures a RuleParser
type Option func(*RuleParser)

func WithLogger(l *logger.Logger) Option {
	return func(p *RuleParser) { p.logger = l }
}

// WithMatchThreshold sets the minimum item match score
func WithMatchThreshold(threshold float64) Option {
	return func(p *RuleParser) { p.threshold = threshold }
}

func New(c *catalog.Catalog, opts ...Option) *RuleParser {
	p := &RuleParser{catalog: c, logger: logger.Nop(), threshold: DefaultMatchThreshold}
	for _, opt := range opts {
		opt(p)
	}
	p.detector = NewDetector(c)
	p.matcher = NewMatcher(c, p.threshold)
	return p
}

// Name identifies the parser in results and metrics
func (p *RuleParser) Name() string {
	return "rule"
}

// Catalog returns the catalog the parser matches against
func (p *RuleParser) Catalog() *catalog.Catalog {
	return p.catalog
}

// Parse implements OrderParser
func (p *RuleParser) Parse(ctx context.Context, text string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.ParseOrderText(text)
}

// ParseOrderText parses one order text into a priced order. Text without any
// recognizable item yields an empty order, not an error.
func (p *RuleParser) ParseOrderText(text string) (*models.Order, error) {
	analysis, err := p.Analyze(text)
	if err != nil {
		return nil, err
	}
	return analysis.Order, nil
}

// Analyze parses text and keeps the output of every stage
func (p *RuleParser) Analyze(text string) (*Analysis, error) {
	prepared, err := PrepareText(text)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	a := &Analysis{Text: prepared}
	stage := func(name string, details map[string]any) {
		a.Stages = append(a.Stages, StageEvent{Stage: name, Elapsed: time.Since(began), Details: details})
	}
	stage(StageStart, map[string]any{"tokens": a.Text.Len()})

	a.Restaurant = p.detector.Detect(a.Text)
	scope := ""
	if a.Restaurant.Restaurant != nil {
		scope = a.Restaurant.Restaurant.ID
	}
	stage(StageDetect, map[string]any{"restaurant": scope, "score": a.Restaurant.Score})

	reserved := a.Restaurant.Mentions
	a.Candidates = p.matcher.Match(a.Text, scope, reserved)
	stage(StageMatch, map[string]any{"candidates": len(a.Candidates)})

	resolved := ResolveQuantitiesAndSizes(a.Text, a.Candidates, reserved)
	a.Resolutions = resolved.Lines
	stage(StageResolve, nil)

	used := mask(a.Text.Len(), reserved)
	for i, c := range resolved.Consumed {
		used[i] = used[i] || c
	}
	mods := ExtractModifiers(p.catalog, a.Text, a.Candidates, used)
	stage(StageModifiers, nil)

	a.Lines = make([]LineSpec, len(a.Candidates))
	for i, c := range a.Candidates {
		a.Lines[i] = LineSpec{
			Item:          c.Item,
			Quantity:      a.Resolutions[i].Quantity,
			Size:          a.Resolutions[i].Size,
			Modifications: mods[i],
		}
	}

	restaurant := a.Restaurant.Restaurant
	if restaurant == nil && !anyAmbiguous(a.Candidates) {
		restaurant = InferRestaurant(p.catalog, a.Lines)
	}
	a.Order = Assemble(restaurant, a.Lines)
	stage(StageAssemble, map[string]any{"items": len(a.Order.Items), "total": a.Order.Total.String()})
	stage(StageDone, nil)

	p.logger.Debug("order_parsed", map[string]any{
		"parser":     p.Name(),
		"restaurant": a.Order.RestaurantName(),
		"items":      a.Order.ItemCount,
		"total":      a.Order.Total.String(),
		"duration":   time.Since(began).String(),
	})
	return a, nil
}

// anyAmbiguous reports whether some item was found at several restaurants alike
func anyAmbiguous(matches []MatchCandidate) bool {
	for _, m := range matches {
		if m.Ambiguous {
			return true
		}
	}
	return false
}
