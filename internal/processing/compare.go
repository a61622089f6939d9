package processing

import (
	"fmt"
	"sort"
	"strings"

	"textorder/internal/models"
)

// SignificantPriceDifference is the total gap above which two parses disagree on price
const SignificantPriceDifference models.Money = 50

// Comparison describes how the rule and LLM orders differ
type Comparison struct {
	RuleItems       int          `json:"rule_items"`
	LLMItems        int          `json:"llm_items"`
	RuleTotal       models.Money `json:"rule_total_cents"`
	LLMTotal        models.Money `json:"llm_total_cents"`
	RuleOnly        []string     `json:"rule_only,omitempty"`
	LLMOnly         []string     `json:"llm_only,omitempty"`
	PriceDifference models.Money `json:"price_difference_cents"`
	Significant     bool         `json:"significant"`
	Differences     []string     `json:"differences"`
}

// Agree reports whether both parsers found the same items at a similar price
func (c *Comparison) Agree() bool {
	return len(c.Differences) == 0
}

// Compare contrasts two orders; either may be nil
func Compare(rule, llm *models.Order) *Comparison {
	c := &Comparison{Differences: []string{}}
	if rule != nil {
		c.RuleItems = len(rule.Items)
		c.RuleTotal = rule.Total
	}
	if llm != nil {
		c.LLMItems = len(llm.Items)
		c.LLMTotal = llm.Total
	}
	if rule == nil || llm == nil {
		return c
	}

	ruleNames, llmNames := itemNames(rule), itemNames(llm)
	c.RuleOnly = missingFrom(ruleNames, llmNames)
	c.LLMOnly = missingFrom(llmNames, ruleNames)
	if len(c.RuleOnly) > 0 {
		c.Differences = append(c.Differences, "rule parser found extra items: "+strings.Join(c.RuleOnly, ", "))
	}
	if len(c.LLMOnly) > 0 {
		c.Differences = append(c.Differences, "llm parser found extra items: "+strings.Join(c.LLMOnly, ", "))
	}

	c.PriceDifference = c.LLMTotal - c.RuleTotal
	if c.PriceDifference < 0 {
		c.PriceDifference = -c.PriceDifference
	}
	if c.PriceDifference > SignificantPriceDifference {
		c.Significant = true
		c.Differences = append(c.Differences, fmt.Sprintf("price difference: %s", c.PriceDifference))
	}
	return c
}

// itemNames maps item ids to display names
func itemNames(o *models.Order) map[string]string {
	names := make(map[string]string, len(o.Items))
	for _, line := range o.Items {
		names[line.ItemID] = line.Name
	}
	return names
}

func missingFrom(from, other map[string]string) []string {
	var out []string
	for id, name := range from {
		if _, ok := other[id]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
