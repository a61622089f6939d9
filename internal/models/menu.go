package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in cents
type Money int64

// String renders the amount as dollars, e.g. $4.99
func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s$%d.%02d", sign, int64(m)/100, int64(m)%100)
}

// Dollars returns the amount as a float for display and metrics only
func (m Money) Dollars() float64 {
	return float64(m) / 100
}

// ParseMoney parses a decimal dollar amount such as "4.99" or "$12"
func ParseMoney(s string) (Money, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac {
		if len(frac) > 2 {
			return 0, fmt.Errorf("amount %q has more than two decimal places", s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
	} else {
		frac = "00"
	}
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if dollars < 0 {
		return Money(dollars*100 - cents), nil
	}
	return Money(dollars*100 + cents), nil
}

// Size is a size variant of a menu item
type Size string

const (
	SizeSmall      Size = "Small"
	SizeMedium     Size = "Medium"
	SizeLarge      Size = "Large"
	SizeExtraLarge Size = "Extra Large"
)

// Sizes lists the size vocabulary from smallest to largest
var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge}

var sizeSynonyms = map[string]Size{
	"small":       SizeSmall,
	"sm":          SizeSmall,
	"mini":        SizeSmall,
	"tall":        SizeSmall,
	"medium":      SizeMedium,
	"med":         SizeMedium,
	"regular":     SizeMedium,
	"grande":      SizeMedium,
	"large":       SizeLarge,
	"lg":          SizeLarge,
	"big":         SizeLarge,
	"venti":       SizeLarge,
	"extra large": SizeExtraLarge,
	"extralarge":  SizeExtraLarge,
	"xl":          SizeExtraLarge,
	"jumbo":       SizeExtraLarge,
}

// ParseSize maps a size word to the vocabulary, case-insensitively
func ParseSize(s string) (Size, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " "))
	size, ok := sizeSynonyms[key]
	return size, ok
}

// Valid reports whether s is one of the vocabulary sizes
func (s Size) Valid() bool {
	for _, size := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Category represents the category of a menu item
type Category string

const (
	CategoryBurger   Category = "burger"
	CategoryEntree   Category = "entree"
	CategorySide     Category = "side"
	CategoryBeverage Category = "beverage"
	CategoryDessert  Category = "dessert"
	CategoryBakery   Category = "bakery"
)

// SizeOption is a size a menu item is offered in and its price delta over the base price
type SizeOption struct {
	Size  Size  `json:"size"`
	Delta Money `json:"delta_cents"`
}

// MenuItem represents an orderable item of one restaurant
type MenuItem struct {
	ID             string       `json:"id"`
	RestaurantID   string       `json:"restaurant_id"`
	Name           string       `json:"name"`
	Category       Category     `json:"category"`
	BasePrice      Money        `json:"base_price_cents"`
	BaseSize       Size         `json:"base_size,omitempty"`
	Sizes          []SizeOption `json:"sizes,omitempty"`
	Aliases        []string     `json:"aliases,omitempty"`
	Customizations []string     `json:"customizations,omitempty"`
}

// Restaurant groups the menu of one restaurant
type Restaurant struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Aliases []string    `json:"aliases,omitempty"`
	Items   []*MenuItem `json:"items,omitempty"`
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.BasePrice <= 0 {
		return fmt.Errorf("menu item %q price must be greater than 0", item.Name)
	}
	if len(item.Sizes) == 0 {
		if item.BaseSize != "" {
			return fmt.Errorf("menu item %q has a base size but no size variants", item.Name)
		}
		return nil
	}
	seen := make(map[Size]bool, len(item.Sizes))
	for _, opt := range item.Sizes {
		if !opt.Size.Valid() {
			return fmt.Errorf("menu item %q has unknown size %q", item.Name, opt.Size)
		}
		if seen[opt.Size] {
			return fmt.Errorf("menu item %q lists size %q twice", item.Name, opt.Size)
		}
		seen[opt.Size] = true
	}
	delta, ok := item.SizeDelta(item.BaseSize)
	if !ok {
		return fmt.Errorf("menu item %q base size %q is not one of its sizes", item.Name, item.BaseSize)
	}
	if delta != 0 {
		return fmt.Errorf("menu item %q base size %q must have a zero delta", item.Name, item.BaseSize)
	}
	return nil
}

// HasSizes reports whether the item comes in size variants
func (mi *MenuItem) HasSizes() bool {
	return len(mi.Sizes) > 0
}

// SizeDelta returns the price delta of a size, if the item offers it
func (mi *MenuItem) SizeDelta(size Size) (Money, bool) {
	for _, opt := range mi.Sizes {
		if opt.Size == size {
			return opt.Delta, true
		}
	}
	return 0, false
}

// Offers checks if the item is available in a size
func (mi *MenuItem) Offers(size Size) bool {
	_, ok := mi.SizeDelta(size)
	return ok
}

// UnitPrice returns the price of one unit in the given size.
// A nil or unavailable size is priced at the base price.
func (mi *MenuItem) UnitPrice(size *Size) Money {
	if size == nil {
		return mi.BasePrice
	}
	delta, _ := mi.SizeDelta(*size)
	return mi.BasePrice + delta
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category Category) bool {
	return mi.Category == category
}
