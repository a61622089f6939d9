// Package textnorm turns order text and catalog phrases into comparable tokens.
//
// Catalog indexing and order parsing must agree on normalization, so both go
// through Tokenize and Key.
package textnorm

import (
	"strings"
	"unicode"
)

// Token is one word of a normalized text
type Token struct {
	// Raw is the lowercased word as written
	Raw string
	// Norm is Raw after typo correction
	Norm string
	// Key is the comparison form of Norm
	Key string
	// BreakAfter is set when clause punctuation follows the word
	BreakAfter bool
}

// Phrase is a tokenized catalog phrase such as an item alias
type Phrase struct {
	Text   string
	Keys   []string
	Joined string
}

// Len returns the number of tokens in the phrase
func (p Phrase) Len() int {
	return len(p.Keys)
}

var typoFixes = map[string]string{
	"fires":      "fries",
	"frys":       "fries",
	"mcchiken":   "mcchicken",
	"mcchickn":   "mcchicken",
	"sprit":      "sprite",
	"burgr":      "burger",
	"cheezy":     "cheesy",
	"chz":        "cheese",
	"lrg":        "large",
	"sml":        "small",
	"crunchwarp": "crunchwrap",
}

// Tokenize lowercases text, strips apostrophes, splits on everything that is
// not a letter or digit and marks clause punctuation.
func Tokenize(text string) []Token {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "w/o", " without ")
	text = strings.ReplaceAll(text, "w/", " with ")
	text = strings.ReplaceAll(text, "&", " and ")

	var tokens []Token
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		raw := word.String()
		word.Reset()
		norm := raw
		if fixed, ok := typoFixes[raw]; ok {
			norm = fixed
		}
		tokens = append(tokens, Token{Raw: raw, Norm: norm, Key: Key(norm)})
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		case r == '\'' || r == '’':
			// mcdonald's -> mcdonalds
		default:
			flush()
			if isClauseBreak(r) && len(tokens) > 0 {
				tokens[len(tokens)-1].BreakAfter = true
			}
		}
	}
	flush()
	return tokens
}

func isClauseBreak(r rune) bool {
	switch r {
	case ',', '.', ';', ':', '!', '?', '\n', '(', ')':
		return true
	}
	return false
}

// Key reduces a normalized word to the form used for comparison.
// Plural forms share a key with their singular.
func Key(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

// NewPhrase tokenizes a catalog phrase
func NewPhrase(text string) Phrase {
	tokens := Tokenize(text)
	keys := make([]string, len(tokens))
	for i, tok := range tokens {
		keys[i] = tok.Key
	}
	return Phrase{
		Text:   text,
		Keys:   keys,
		Joined: Key(strings.Join(norms(tokens), "")),
	}
}

func norms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Norm
	}
	return out
}

// Signature returns the space-joined keys, usable as a map key
func (p Phrase) Signature() string {
	return strings.Join(p.Keys, " ")
}

// Join renders tokens[start:end] as written, separated by single spaces
func Join(tokens []Token, start, end int) string {
	words := make([]string, 0, end-start)
	for _, tok := range tokens[start:end] {
		words = append(words, tok.Raw)
	}
	return strings.Join(words, " ")
}

// Slug turns a display name into an identifier, e.g. "Dairy Queen" -> "dairy-queen"
func Slug(name string) string {
	tokens := Tokenize(name)
	return strings.Join(norms(tokens), "-")
}
