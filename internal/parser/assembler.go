package parser

import (
	"textorder/internal/catalog"
	"textorder/internal/models"
)

// LineSpec is one resolved order line before pricing
type LineSpec struct {
	Item          *models.MenuItem
	Quantity      int
	Size          *models.Size
	Modifications []string
}

// Assemble prices the lines and totals the order. Lines naming the same item
// with the same size and modifications are merged into the first of them.
func Assemble(restaurant *models.Restaurant, lines []LineSpec) *models.Order {
	order := &models.Order{Items: make([]models.LineItem, 0, len(lines))}
	if restaurant != nil {
		order.Restaurant = &models.RestaurantRef{ID: restaurant.ID, Name: restaurant.Name}
	}

	for _, spec := range lines {
		if spec.Item == nil || spec.Quantity <= 0 {
			continue
		}
		if i := findLine(order.Items, spec); i >= 0 {
			line := &order.Items[i]
			line.Quantity += spec.Quantity
			line.LinePrice = line.UnitPrice * models.Money(line.Quantity)
			continue
		}

		unit := spec.Item.UnitPrice(spec.Size)
		line := models.LineItem{
			ItemID:        spec.Item.ID,
			Name:          spec.Item.Name,
			RestaurantID:  spec.Item.RestaurantID,
			Item:          spec.Item,
			Quantity:      spec.Quantity,
			Modifications: append([]string{}, spec.Modifications...),
			UnitPrice:     unit,
			LinePrice:     unit * models.Money(spec.Quantity),
		}
		if spec.Size != nil && spec.Item.Offers(*spec.Size) {
			size := *spec.Size
			line.Size = &size
		}
		order.Items = append(order.Items, line)
	}

	for _, line := range order.Items {
		order.Subtotal += line.LinePrice
		order.ItemCount += line.Quantity
	}
	order.Tax = models.TaxOn(order.Subtotal)
	order.Total = order.Subtotal + order.Tax
	return order
}

func findLine(items []models.LineItem, spec LineSpec) int {
	for i, line := range items {
		if line.ItemID != spec.Item.ID || !sameSize(line.Size, spec.Size, spec.Item) {
			continue
		}
		if equalStrings(line.Modifications, spec.Modifications) {
			return i
		}
	}
	return -1
}

func sameSize(a, b *models.Size, item *models.MenuItem) bool {
	if b != nil && !item.Offers(*b) {
		b = nil
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InferRestaurant returns the restaurant every line belongs to, or nil when
// the lines are empty or span several restaurants
func InferRestaurant(c *catalog.Catalog, lines []LineSpec) *models.Restaurant {
	id := ""
	for _, line := range lines {
		if line.Item == nil {
			continue
		}
		switch {
		case id == "":
			id = line.Item.RestaurantID
		case id != line.Item.RestaurantID:
			return nil
		}
	}
	if id == "" {
		return nil
	}
	r, _ := c.Restaurant(id)
	return r
}
