package llmparser

import (
	"fmt"
	"strings"

	"textorder/internal/catalog"
	"textorder/internal/models/providers"
)

const systemPrompt = `You are a restaurant order processing assistant. Parse the customer's order
into structured JSON using only the menu below.

%s
SIZES: Small, Medium, Large, Extra Large

RULES:
1. Return ONLY valid JSON with no additional text
2. Match menu items by name or alias, be flexible with spelling
3. Use the exact menu item name in "name"
4. Leave "size" empty when the customer did not ask for one
5. Only include modifications the customer clearly asked for
6. Skip anything that is not on the menu

Response format:
{"restaurant": "Restaurant Name", "items": [{"name": "Menu Item Name", "quantity": 1, "size": "Medium", "modifications": ["no pickles"]}]}`

// MenuContext lists every restaurant with its items, sizes and aliases
func MenuContext(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("AVAILABLE MENU ITEMS:\n")
	for _, r := range c.Restaurants() {
		fmt.Fprintf(&b, "%s", r.Name)
		if len(r.Aliases) > 0 {
			fmt.Fprintf(&b, " (also called: %s)", strings.Join(r.Aliases, ", "))
		}
		b.WriteString("\n")
		for _, mi := range r.Items {
			fmt.Fprintf(&b, "• %s - %s", mi.Name, mi.BasePrice)
			if mi.HasSizes() {
				sizes := make([]string, len(mi.Sizes))
				for i, opt := range mi.Sizes {
					sizes[i] = string(opt.Size)
				}
				fmt.Fprintf(&b, " (sizes: %s)", strings.Join(sizes, ", "))
			}
			if len(mi.Aliases) > 0 {
				fmt.Fprintf(&b, " (also called: %s)", strings.Join(mi.Aliases, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// BuildMessages returns the chat turns sent for one order text
func BuildMessages(menu, text string) []providers.Message {
	return []providers.Message{
		{Role: providers.RoleSystem, Content: fmt.Sprintf(systemPrompt, menu)},
		{Role: providers.RoleUser, Content: fmt.Sprintf("Customer order: %q\n\nReturn JSON:", text)},
	}
}
