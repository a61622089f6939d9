package parser

import (
	"strconv"
	"strings"

	"textorder/internal/models"
)

// QuantityWindow is how many tokens before an item are searched for its
// quantity and size
const QuantityWindow = 3

// MaxQuantity caps numeric quantities; larger numbers are ignored
const MaxQuantity = 100

var quantityWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "single": 1,
	"two": 2, "double": 2, "couple": 2, "pair": 2,
	"three": 3, "triple": 3,
	"four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	"nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "dozen": 12,
}

// Resolution is the quantity and size chosen for one matched item
type Resolution struct {
	Quantity int          `json:"quantity"`
	Size     *models.Size `json:"size,omitempty"`
	// Requested is the size written in the text, even when the item does not offer it
	Requested *models.Size `json:"requested_size,omitempty"`
}

// Resolved holds the resolutions aligned with the matches and the tokens they used
type Resolved struct {
	Lines    []Resolution
	Consumed []bool
}

// ResolveQuantitiesAndSizes looks for quantity and size words in the few
// tokens before each match. The window never reaches past the previous
// match, a clause break or a reserved span, and the token nearest to the
// item wins. Each token is used at most once.
func ResolveQuantitiesAndSizes(text *Text, matches []MatchCandidate, reserved []Span) Resolved {
	tokens := text.Tokens
	blocked := mask(len(tokens), reserved)
	consumed := make([]bool, len(tokens))
	lines := make([]Resolution, len(matches))

	prevEnd := 0
	for mi, m := range matches {
		res := Resolution{}
		lo := m.Start - QuantityWindow
		if lo < prevEnd {
			lo = prevEnd
		}

		for k := m.Start - 1; k >= lo; k-- {
			if blocked[k] || tokens[k].BreakAfter {
				break
			}
			if consumed[k] {
				continue
			}
			if res.Requested == nil {
				if size, used := sizeAt(text, k, lo, consumed); size != nil {
					res.Requested = size
					for _, u := range used {
						consumed[u] = true
					}
					continue
				}
			}
			if res.Quantity == 0 {
				if qty, used := quantityAt(text, k, lo, consumed); qty > 0 {
					res.Quantity = qty
					for _, u := range used {
						consumed[u] = true
					}
				}
			}
		}

		if res.Quantity == 0 {
			res.Quantity = 1
		}
		res.Size = chooseSize(m.Item, res.Requested)
		lines[mi] = res
		prevEnd = m.End
	}

	return Resolved{Lines: lines, Consumed: consumed}
}

// sizeAt reads a size ending at token k; "extra large" spans two tokens
func sizeAt(text *Text, k, lo int, consumed []bool) (*models.Size, []int) {
	tokens := text.Tokens
	if k-1 >= lo && !consumed[k-1] && !tokens[k-1].BreakAfter {
		if size, ok := models.ParseSize(tokens[k-1].Norm + " " + tokens[k].Norm); ok {
			return &size, []int{k - 1, k}
		}
	}
	if size, ok := models.ParseSize(tokens[k].Norm); ok {
		return &size, []int{k}
	}
	return nil, nil
}

// quantityAt reads a quantity at token k: digits, "2x", number words, or "half dozen"
func quantityAt(text *Text, k, lo int, consumed []bool) (int, []int) {
	word := text.Tokens[k].Norm
	if word == "dozen" && k-1 >= lo && !consumed[k-1] && text.Tokens[k-1].Norm == "half" {
		return 6, []int{k - 1, k}
	}
	if qty, ok := quantityWords[word]; ok {
		return qty, []int{k}
	}
	digits := strings.TrimSuffix(word, "x")
	if n, err := strconv.Atoi(digits); err == nil && n > 0 && n <= MaxQuantity {
		return n, []int{k}
	}
	return 0, nil
}

// chooseSize returns the requested size when offered, else the base size.
// Items without size variants have no size.
func chooseSize(item *models.MenuItem, requested *models.Size) *models.Size {
	if !item.HasSizes() {
		return nil
	}
	if requested != nil && item.Offers(*requested) {
		size := *requested
		return &size
	}
	base := item.BaseSize
	return &base
}
