package parser

import (
	"sort"

	"textorder/internal/catalog"
	"textorder/internal/models"
	"textorder/internal/textnorm"
)

// MatchMethod tells how a candidate was matched
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchJoined  MatchMethod = "joined"
	MatchPartial MatchMethod = "partial"
)

// Scoring weights of the item matcher
const (
	DefaultMatchThreshold = 0.5

	exactWeight    = 0.9
	joinedWeight   = 0.85
	canonicalBonus = 0.1
	genericPenalty = 0.8
)

// genericWords are single-word aliases common enough to appear in unrelated text
var genericWords = toKeys(
	"fries", "fry", "taco", "coke", "cola", "pie", "burger", "wings", "nuggets",
	"soda", "drink", "chicken", "shake", "coffee", "tea", "water", "burrito",
	"nachos", "sandwich", "salad", "frap", "baja",
)

// negations before an item mention cancel it ("no fries", "hold the coke")
var negations = toKeys("no", "without", "hold")

// negationFillers may sit between a negation and the item it cancels
var negationFillers = toKeys("a", "an", "the", "any", "my")

func toKeys(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[textnorm.Key(w)] = true
	}
	return out
}

// MatchCandidate is a menu item found in a span of the text
type MatchCandidate struct {
	Item   *models.MenuItem `json:"-"`
	ItemID string           `json:"item_id"`
	Start  int              `json:"start"`
	End    int              `json:"end"`
	Text   string           `json:"text"`
	Score  float64          `json:"score"`
	Method MatchMethod      `json:"method"`

	// Ambiguous is set when another restaurant's item matched the same span
	// with the same score, so the item does not identify a restaurant.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Span returns the token span of the candidate
func (m MatchCandidate) Span() Span {
	return Span{m.Start, m.End}
}

// Matcher finds menu items mentioned in order text
type Matcher struct {
	catalog   *catalog.Catalog
	threshold float64
}

func NewMatcher(c *catalog.Catalog, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{catalog: c, threshold: threshold}
}

// Match returns non-overlapping item candidates in text order. With an empty
// restaurantID every restaurant's menu is searched. Tokens inside reserved
// spans never match, and negated mentions ("no fries") are left out.
func (m *Matcher) Match(text *Text, restaurantID string, reserved []Span) []MatchCandidate {
	tokens := text.Tokens
	blocked := mask(len(tokens), reserved)

	var candidates []MatchCandidate
	add := func(ref catalog.AliasRef, start, end int, score float64, method MatchMethod) {
		if score < m.threshold {
			return
		}
		candidates = append(candidates, MatchCandidate{
			Item:   ref.Item,
			ItemID: ref.Item.ID,
			Start:  start,
			End:    end,
			Text:   textnorm.Join(tokens, start, end),
			Score:  score,
			Method: method,
		})
	}
	// joinable reports whether token i continues a run started at i-1
	joinable := func(i int) bool {
		return i < len(tokens) && !blocked[i] && !tokens[i-1].BreakAfter
	}

	for i, tok := range tokens {
		if blocked[i] {
			continue
		}
		for _, ref := range m.catalog.AliasesWithKey(tok.Key) {
			if restaurantID != "" && ref.Item.RestaurantID != restaurantID {
				continue
			}
			keys := ref.Phrase.Keys
			for j, key := range keys {
				if key != tok.Key {
					continue
				}
				// only score maximal runs
				if i > 0 && j > 0 && joinable(i) && !blocked[i-1] && tokens[i-1].Key == keys[j-1] {
					continue
				}
				n := 1
				for j+n < len(keys) && joinable(i+n) && tokens[i+n].Key == keys[j+n] {
					n++
				}
				score, method := scoreRun(ref, n)
				add(ref, i, i+n, score, method)
			}
		}
		for _, ref := range m.catalog.AliasesJoined(tok.Key) {
			if restaurantID != "" && ref.Item.RestaurantID != restaurantID {
				continue
			}
			score := joinedWeight
			if ref.Canonical {
				score += canonicalBonus
			}
			add(ref, i, i+1, score, MatchJoined)
		}
	}

	kept := m.resolveOverlaps(candidates)
	out := kept[:0]
	for _, c := range kept {
		if !negated(tokens, c.Start) {
			out = append(out, c)
		}
	}
	return out
}

// negated reports whether the item starting at start is preceded, within its
// clause, by a negation. Its tokens then stay free for the modifier extractor.
func negated(tokens []textnorm.Token, start int) bool {
	for i := start - 1; i >= 0 && !tokens[i].BreakAfter; i-- {
		key := tokens[i].Key
		if negations[key] {
			return true
		}
		if !negationFillers[key] {
			return false
		}
	}
	return false
}

// scoreRun scores n matched tokens of an alias phrase
func scoreRun(ref catalog.AliasRef, n int) (float64, MatchMethod) {
	total := ref.Phrase.Len()
	score := exactWeight * float64(n) / float64(total)
	method := MatchPartial
	if n == total {
		method = MatchExact
		if ref.Canonical {
			score += canonicalBonus
		}
	}
	if total == 1 {
		key := ref.Phrase.Keys[0]
		if genericWords[key] || len(key) <= 3 {
			score *= genericPenalty
		}
	}
	if score > 1 {
		score = 1
	}
	return score, method
}

// resolveOverlaps keeps the best candidate wherever candidates overlap:
// higher score first, then the longer span, then the earlier position, then
// catalog order. A winner that only beat another restaurant's item on catalog
// order is marked Ambiguous.
func (m *Matcher) resolveOverlaps(candidates []MatchCandidate) []MatchCandidate {
	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		if la, lb := ca.End-ca.Start, cb.End-cb.Start; la != lb {
			return la > lb
		}
		if ca.Start != cb.Start {
			return ca.Start < cb.Start
		}
		return m.catalog.Position(ca.Item) < m.catalog.Position(cb.Item)
	})

	var kept []MatchCandidate
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.Span().Overlaps(k.Span()) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			c.Ambiguous = hasRival(candidates, c)
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(a, b int) bool { return kept[a].Start < kept[b].Start })
	return kept
}

func hasRival(candidates []MatchCandidate, c MatchCandidate) bool {
	for _, o := range candidates {
		if o.Start == c.Start && o.End == c.End && o.Score == c.Score &&
			o.Item.RestaurantID != c.Item.RestaurantID {
			return true
		}
	}
	return false
}
