package catalog

import (
	"fmt"
	"strings"

	"textorder/internal/models"
)

// FormatMenu renders the menu of one restaurant, or of every restaurant when
// restaurantID is empty.
func FormatMenu(c *Catalog, restaurantID string) (string, error) {
	restaurants := c.Restaurants()
	if restaurantID != "" {
		r, ok := c.FindRestaurant(restaurantID)
		if !ok {
			return "", fmt.Errorf("unknown restaurant: %s", restaurantID)
		}
		restaurants = []*models.Restaurant{r}
	}

	var b strings.Builder
	for i, r := range restaurants {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s)\n", r.Name, r.ID)
		for _, mi := range r.Items {
			fmt.Fprintf(&b, "  • %s - %s", mi.Name, mi.BasePrice)
			if mi.HasSizes() {
				sizes := make([]string, 0, len(mi.Sizes))
				for _, opt := range mi.Sizes {
					if opt.Delta == 0 {
						sizes = append(sizes, string(opt.Size))
						continue
					}
					sizes = append(sizes, fmt.Sprintf("%s +%s", opt.Size, opt.Delta))
				}
				fmt.Fprintf(&b, " [%s]", strings.Join(sizes, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
