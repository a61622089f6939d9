// Package parser turns free-text food orders into priced orders using the
// catalog and a fixed set of rules: restaurant detection, item matching,
// quantity and size resolution, modifier extraction and order assembly.
//
// Every stage is a pure function of its inputs, so a RuleParser is safe for
// concurrent use and parsing the same text twice yields identical orders.
package parser

import (
	"context"
	"strings"
	"unicode/utf8"

	"textorder/internal/models"
	"textorder/internal/textnorm"
)

// OrderParser is implemented by every parser that can turn text into an order
type OrderParser interface {
	Parse(ctx context.Context, text string) (*models.Order, error)
}

// Span is a half-open range of token positions
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share a token
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text is order text prepared for the parsing stages
type Text struct {
	Raw    string
	Tokens []textnorm.Token
}

// NewText tokenizes raw order text
func NewText(raw string) *Text {
	return &Text{Raw: raw, Tokens: textnorm.Tokenize(raw)}
}

// PrepareText checks raw order text and tokenizes it. Empty or blank text is
// ErrEmptyInput; invalid UTF-8 or text without a single word is ErrInvalidInput.
// Every OrderParser calls it so they reject the same inputs alike.
func PrepareText(raw string) (*Text, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.ErrEmptyInput
	}
	if !utf8.ValidString(raw) {
		return nil, models.ErrInvalidInput
	}
	t := NewText(raw)
	if t.Len() == 0 {
		return nil, models.ErrInvalidInput
	}
	return t, nil
}

// Len returns the number of tokens
func (t *Text) Len() int {
	return len(t.Tokens)
}

// occurrences finds a phrase as contiguous tokens within one clause, or as a
// single token spelling the phrase without spaces.
func (t *Text) occurrences(p textnorm.Phrase) (exact, joined []Span) {
	n := p.Len()
	if n == 0 {
		return nil, nil
	}
	for i := 0; i+n <= len(t.Tokens); i++ {
		if t.matchesAt(i, p.Keys) {
			exact = append(exact, Span{i, i + n})
		}
	}
	if n > 1 {
		for i, tok := range t.Tokens {
			if tok.Key == p.Joined {
				joined = append(joined, Span{i, i + 1})
			}
		}
	}
	return exact, joined
}

func (t *Text) matchesAt(i int, keys []string) bool {
	for k, key := range keys {
		if t.Tokens[i+k].Key != key {
			return false
		}
		if k < len(keys)-1 && t.Tokens[i+k].BreakAfter {
			return false
		}
	}
	return true
}

// mask marks every token covered by the spans
func mask(n int, spans ...[]Span) []bool {
	out := make([]bool, n)
	for _, group := range spans {
		for _, s := range group {
			for i := s.Start; i < s.End && i < n; i++ {
				out[i] = true
			}
		}
	}
	return out
}
