package parser

import (
	"textorder/internal/catalog"
	"textorder/internal/textnorm"
)

// prefixTriggers open a modification phrase; the value is the trigger length
var prefixTriggers = map[string][]string{
	"no":         nil,
	"without":    nil,
	"extra":      nil,
	"add":        nil,
	"with":       nil,
	"hold":       nil,
	"light":      nil,
	"sub":        nil,
	"substitute": nil,
	"side":       {"of"},
	"easy":       {"on"},
}

// suffixTriggers close a modification phrase that has no prefix trigger
var suffixTriggers = [][]string{
	{"on", "the", "side"},
	{"on", "side"},
	{"included"},
}

// fillers carry no modification content and are trimmed from phrase edges
var fillers = toKeys(
	"and", "or", "plus", "also", "then", "please", "but", "from", "at", "for",
	"to", "of", "a", "an", "the", "some", "me", "my", "it", "in", "thanks",
	"thank", "you", "i", "want", "get", "can", "like", "would",
)

// phrase is one extracted modification and the content words it carries
type phrase struct {
	start, end int
	text       string
	content    []string
}

// ExtractModifiers finds modification phrases in the tokens not used by items,
// quantities, sizes or restaurant names, and returns them per match.
//
// A phrase attaches to the nearest preceding item. A clause holding nothing
// but modifications ("..., mayo and ketchup included") attaches to the
// preceding item whose known customizations share the most words with it,
// falling back to the nearest one. Phrases with no preceding item are dropped.
func ExtractModifiers(c *catalog.Catalog, text *Text, matches []MatchCandidate, used []bool) [][]string {
	tokens := text.Tokens
	mods := make([][]string, len(matches))

	free := make([]bool, len(tokens))
	for i := range tokens {
		free[i] = !used[i]
	}
	for _, m := range matches {
		for i := m.Start; i < m.End; i++ {
			free[i] = false
		}
	}

	for start := 0; start < len(tokens); {
		if !free[start] {
			start++
			continue
		}
		end := start
		for end < len(tokens) && free[end] {
			end++
			if tokens[end-1].BreakAfter {
				break
			}
		}

		detached := (start == 0 || tokens[start-1].BreakAfter) &&
			(end == len(tokens) || tokens[end-1].BreakAfter)

		for _, p := range splitPhrases(tokens, start, end) {
			owner := nearestBefore(matches, p.start)
			if owner < 0 {
				continue
			}
			if detached {
				owner = bestAffinity(c, matches, owner, p)
			}
			mods[owner] = appendUnique(mods[owner], p.text)
		}
		start = end
	}
	return mods
}

// splitPhrases cuts a segment at every prefix trigger
func splitPhrases(tokens []textnorm.Token, start, end int) []phrase {
	var cuts []int
	for i := start; i < end; i++ {
		if triggerLen(tokens, i, end) > 0 {
			cuts = append(cuts, i)
		}
	}

	var out []phrase
	chunkStart := start
	for ci := 0; ci <= len(cuts); ci++ {
		chunkEnd := end
		if ci < len(cuts) {
			chunkEnd = cuts[ci]
		}
		if chunkEnd > chunkStart {
			if p, ok := buildPhrase(tokens, chunkStart, chunkEnd, ci > 0 || chunkStart != start); ok {
				out = append(out, p)
			}
		}
		if ci < len(cuts) {
			chunkStart = cuts[ci]
		}
	}
	return out
}

// triggerLen returns the length of the prefix trigger at i, or 0
func triggerLen(tokens []textnorm.Token, i, end int) int {
	follow, ok := prefixTriggers[tokens[i].Key]
	if !ok {
		return 0
	}
	for k, word := range follow {
		if i+1+k >= end || tokens[i+1+k].Key != word {
			return 0
		}
	}
	return 1 + len(follow)
}

// buildPhrase turns a chunk into a phrase. A chunk opened by a prefix trigger
// is always a candidate; any other chunk needs a suffix trigger.
func buildPhrase(tokens []textnorm.Token, start, end int, triggered bool) (phrase, bool) {
	if suffixEnd := findSuffix(tokens, start, end); suffixEnd > 0 {
		end = suffixEnd
		triggered = true
	} else {
		for end > start && fillers[tokens[end-1].Key] {
			end--
		}
	}
	if !triggered {
		return phrase{}, false
	}

	textStart := start
	contentStart := start
	if n := triggerLen(tokens, start, end); n > 0 {
		contentStart = start + n
		if tokens[start].Key == "with" {
			textStart = contentStart
		}
	}
	for textStart < end && fillers[tokens[textStart].Key] {
		textStart++
	}

	var content []string
	for i := contentStart; i < end; i++ {
		key := tokens[i].Key
		if fillers[key] || isSuffixWord(key) {
			continue
		}
		content = append(content, key)
	}
	if len(content) == 0 || textStart >= end {
		return phrase{}, false
	}

	return phrase{
		start:   start,
		end:     end,
		text:    textnorm.Join(tokens, textStart, end),
		content: content,
	}, true
}

// findSuffix returns the end of the first suffix trigger in the chunk, or 0
func findSuffix(tokens []textnorm.Token, start, end int) int {
	for i := start + 1; i < end; i++ {
		for _, suffix := range suffixTriggers {
			if i+len(suffix) > end {
				continue
			}
			matched := true
			for k, word := range suffix {
				if tokens[i+k].Key != word {
					matched = false
					break
				}
			}
			if matched {
				return i + len(suffix)
			}
		}
	}
	return 0
}

func isSuffixWord(key string) bool {
	return key == "side" || key == "on" || key == "included"
}

// nearestBefore returns the index of the last match ending at or before pos
func nearestBefore(matches []MatchCandidate, pos int) int {
	owner := -1
	for i, m := range matches {
		if m.End <= pos {
			owner = i
		}
	}
	return owner
}

// bestAffinity picks, among the matches up to last, the item whose
// customizations share the most words with the phrase. Ties go to the later item.
func bestAffinity(c *catalog.Catalog, matches []MatchCandidate, last int, p phrase) int {
	best, bestScore := last, 0
	for i := last; i >= 0; i-- {
		known := c.CustomizationKeys(matches[i].Item)
		score := 0
		for _, key := range p.content {
			if known[key] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
