package models

import (
	"errors"
	"fmt"
	"strings"
)

// TaxRateBasisPoints is the sales tax applied to every order subtotal (8%)
const TaxRateBasisPoints = 800

var (
	// ErrInputInvalid is the input-error class returned by every order parser
	ErrInputInvalid = errors.New("invalid order input")
	// ErrEmptyInput is returned for empty or whitespace-only text
	ErrEmptyInput = fmt.Errorf("%w: order text is empty", ErrInputInvalid)
	// ErrInvalidInput is returned for text that cannot be read as an order
	ErrInvalidInput = fmt.Errorf("%w: order text is not readable text", ErrInputInvalid)
)

// RestaurantRef identifies the restaurant an order is placed with
type RestaurantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineItem is one resolved line of an order
type LineItem struct {
	ItemID        string    `json:"item_id"`
	Name          string    `json:"name"`
	RestaurantID  string    `json:"restaurant_id"`
	Item          *MenuItem `json:"-"`
	Quantity      int       `json:"quantity"`
	Size          *Size     `json:"size,omitempty"`
	Modifications []string  `json:"modifications"`
	UnitPrice     Money     `json:"unit_price_cents"`
	LinePrice     Money     `json:"line_price_cents"`
}

// Order is the structured result of parsing one order text
type Order struct {
	Restaurant *RestaurantRef `json:"restaurant"`
	Items      []LineItem     `json:"items"`
	Subtotal   Money          `json:"subtotal_cents"`
	Tax        Money          `json:"tax_cents"`
	Total      Money          `json:"total_cents"`
	ItemCount  int            `json:"item_count"`
}

// TaxOn returns the tax on a subtotal, rounded half-up to the cent
func TaxOn(subtotal Money) Money {
	if subtotal <= 0 {
		return 0
	}
	return (subtotal*TaxRateBasisPoints + 5000) / 10000
}

// RestaurantName returns the restaurant display name or "Unknown"
func (o *Order) RestaurantName() string {
	if o.Restaurant == nil {
		return "Unknown"
	}
	return o.Restaurant.Name
}

// IsEmpty reports whether no line item was recognized
func (o *Order) IsEmpty() bool {
	return len(o.Items) == 0
}

// Summary renders the order as a short receipt
func (o *Order) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restaurant: %s\n", o.RestaurantName())
	if o.IsEmpty() {
		b.WriteString("No menu items recognized\n")
	}
	for i, line := range o.Items {
		name := line.Name
		if line.Size != nil {
			name = string(*line.Size) + " " + name
		}
		fmt.Fprintf(&b, "%d. %dx %s  %s\n", i+1, line.Quantity, name, line.LinePrice)
		for _, mod := range line.Modifications {
			fmt.Fprintf(&b, "     - %s\n", mod)
		}
	}
	fmt.Fprintf(&b, "Items: %d\n", o.ItemCount)
	fmt.Fprintf(&b, "Subtotal: %s\n", o.Subtotal)
	fmt.Fprintf(&b, "Tax (8%%): %s\n", o.Tax)
	fmt.Fprintf(&b, "Total: %s\n", o.Total)
	return b.String()
}
