package parser

import (
	"textorder/internal/catalog"
	"textorder/internal/models"
	"textorder/internal/textnorm"
)

const (
	nameWeight      = 2.0
	signatureWeight = 1.0
	joinedFactor    = 0.8
	scoreEpsilon    = 1e-9
)

// RestaurantMatch is the outcome of restaurant detection
type RestaurantMatch struct {
	// Restaurant is nil when no restaurant scored or the top score was tied
	Restaurant *models.Restaurant `json:"-"`
	Score      float64            `json:"score"`
	// Scores holds every non-zero restaurant score by restaurant id
	Scores map[string]float64 `json:"scores,omitempty"`
	// Mentions are the token spans where any restaurant name or alias appears
	Mentions []Span `json:"mentions,omitempty"`
}

// Detector picks the restaurant an order text is addressed to
type Detector struct {
	catalog *catalog.Catalog
}

func NewDetector(c *catalog.Catalog) *Detector {
	return &Detector{catalog: c}
}

// Detect scores every restaurant by the names, aliases and distinctive item
// phrases found in the text. Multi-word phrases weigh more than single words.
// The strictly highest score wins; a tie at the top detects nothing.
func (d *Detector) Detect(text *Text) *RestaurantMatch {
	match := &RestaurantMatch{Scores: make(map[string]float64)}

	var best *models.Restaurant
	bestScore, tied := 0.0, false
	for _, r := range d.catalog.Restaurants() {
		score := 0.0
		for _, p := range d.catalog.NamePhrases(r.ID) {
			s, spans := phraseScore(text, p, nameWeight)
			score += s
			match.Mentions = append(match.Mentions, spans...)
		}
		for _, p := range d.catalog.SignaturePhrases(r.ID) {
			s, _ := phraseScore(text, p, signatureWeight)
			score += s
		}
		if score <= 0 {
			continue
		}
		match.Scores[r.ID] = score

		switch {
		case score > bestScore+scoreEpsilon:
			best, bestScore, tied = r, score, false
		case score > bestScore-scoreEpsilon:
			tied = true
		}
	}

	if best != nil && !tied {
		match.Restaurant = best
		match.Score = bestScore
	}
	return match
}

// phraseScore counts a phrase once, however often it occurs
func phraseScore(text *Text, p textnorm.Phrase, weight float64) (float64, []Span) {
	exact, joined := text.occurrences(p)
	switch {
	case len(exact) > 0:
		return weight * float64(p.Len()), append(exact, joined...)
	case len(joined) > 0:
		return weight * float64(p.Len()) * joinedFactor, joined
	}
	return 0, nil
}
