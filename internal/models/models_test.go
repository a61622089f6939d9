package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$4.99", Money(499).String())
	assert.Equal(t, "$0.05", Money(5).String())
	assert.Equal(t, "-$1.50", Money(-150).String())
	assert.Equal(t, 15.2, Money(1520).Dollars())

	for in, want := range map[string]Money{"4.99": 499, "$12": 1200, "0.5": 50, ".25": 25, " 3.10 ": 310} {
		got, err := ParseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "$", "1.999", "abc", "1.x"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, in)
	}
}

func TestTaxRoundsHalfUp(t *testing.T) {
	assert.Equal(t, Money(113), TaxOn(1407))
	assert.Equal(t, Money(52), TaxOn(649))
	assert.Equal(t, Money(0), TaxOn(0))
	// 0.08 * 6.25 = 0.50 exactly, 0.08 * 0.06 = 0.0048 rounds to 0
	assert.Equal(t, Money(50), TaxOn(625))
	assert.Equal(t, Money(0), TaxOn(6))
}

func TestParseSize(t *testing.T) {
	cases := map[string]Size{
		"large":        SizeLarge,
		"LG":           SizeLarge,
		"venti":        SizeLarge,
		"extra-large":  SizeExtraLarge,
		"Extra  Large": SizeExtraLarge,
		"regular":      SizeMedium,
		"tall":         SizeSmall,
	}
	for in, want := range cases {
		got, ok := ParseSize(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSize("huge")
	assert.False(t, ok)
	assert.False(t, Size("Huge").Valid())
}

func TestMenuItemPricing(t *testing.T) {
	coke := &MenuItem{
		Name:      "Coca-Cola",
		BasePrice: 139,
		BaseSize:  SizeMedium,
		Sizes: []SizeOption{
			{Size: SizeSmall, Delta: -40},
			{Size: SizeMedium},
			{Size: SizeLarge, Delta: 40},
		},
	}
	require.NoError(t, ValidateMenuItem(coke))

	large, xl := SizeLarge, SizeExtraLarge
	assert.Equal(t, Money(179), coke.UnitPrice(&large))
	assert.Equal(t, Money(139), coke.UnitPrice(nil))
	assert.Equal(t, Money(139), coke.UnitPrice(&xl))
	assert.True(t, coke.Offers(SizeSmall))
	assert.False(t, coke.Offers(SizeExtraLarge))
}

func TestValidateMenuItem(t *testing.T) {
	bad := []*MenuItem{
		{Name: " ", BasePrice: 100},
		{Name: "Free", BasePrice: 0},
		{Name: "Orphan", BasePrice: 100, BaseSize: SizeMedium},
		{Name: "Odd", BasePrice: 100, BaseSize: SizeMedium, Sizes: []SizeOption{{Size: "Huge"}}},
		{Name: "Twice", BasePrice: 100, BaseSize: SizeMedium, Sizes: []SizeOption{{Size: SizeMedium}, {Size: SizeMedium}}},
		{Name: "Shifted", BasePrice: 100, BaseSize: SizeMedium, Sizes: []SizeOption{{Size: SizeMedium, Delta: 10}}},
		{Name: "Missing", BasePrice: 100, BaseSize: SizeLarge, Sizes: []SizeOption{{Size: SizeMedium}}},
	}
	for _, item := range bad {
		assert.Error(t, ValidateMenuItem(item), item.Name)
	}
}

func TestOrderSummary(t *testing.T) {
	large := SizeLarge
	order := &Order{
		Restaurant: &RestaurantRef{ID: "mcdonalds", Name: "McDonald's"},
		Items: []LineItem{
			{Name: "Big Mac", Quantity: 2, Modifications: []string{"extra cheese"}, UnitPrice: 649, LinePrice: 1298},
			{Name: "Coca-Cola", Quantity: 1, Size: &large, UnitPrice: 179, LinePrice: 179},
		},
		Subtotal:  1477,
		Tax:       118,
		Total:     1595,
		ItemCount: 3,
	}
	summary := order.Summary()
	assert.Contains(t, summary, "Restaurant: McDonald's\n")
	assert.Contains(t, summary, "1. 2x Big Mac  $12.98\n")
	assert.Contains(t, summary, "     - extra cheese\n")
	assert.Contains(t, summary, "2. 1x Large Coca-Cola  $1.79\n")
	assert.Contains(t, summary, "Total: $15.95\n")

	empty := &Order{}
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "Unknown", empty.RestaurantName())
	assert.Contains(t, empty.Summary(), "No menu items recognized")
}

func TestInputErrorsShareClass(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyInput, ErrInputInvalid))
	assert.True(t, errors.Is(ErrInvalidInput, ErrInputInvalid))
	assert.False(t, errors.Is(ErrEmptyInput, ErrInvalidInput))
}
