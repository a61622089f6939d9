package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorder/internal/catalog"
	"textorder/internal/models"
)

func resolve(t *testing.T, raw, restaurantID string) ([]MatchCandidate, Resolved) {
	t.Helper()
	text := NewText(raw)
	matches := NewMatcher(catalog.Default(), 0).Match(text, restaurantID, nil)
	return matches, ResolveQuantitiesAndSizes(text, matches, nil)
}

func size(s models.Size) *models.Size { return &s }

func TestResolve_QuantityWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"two crunchwrap supremes", 2},
		{"a couple of crunchwrap supremes", 2},
		{"a pair of crunchwrap supremes", 2},
		{"3 crunchwrap supremes", 3},
		{"4x crunchwrap supremes", 4},
		{"half dozen crunchwrap supremes", 6},
		{"a dozen crunchwrap supremes", 12},
		{"crunchwrap supremes", 1},
		{"an crunchwrap", 1},
		{"500 crunchwrap supremes", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			matches, resolved := resolve(t, tt.text, "taco-bell")
			require.Len(t, matches, 1)
			assert.Equal(t, tt.want, resolved.Lines[0].Quantity)
		})
	}
}

func TestResolve_Sizes(t *testing.T) {
	_, resolved := resolve(t, "a large fries and medium sprite", "mcdonalds")
	require.Len(t, resolved.Lines, 2)
	assert.Equal(t, size(models.SizeLarge), resolved.Lines[0].Size)
	assert.Equal(t, 1, resolved.Lines[0].Quantity)
	assert.Equal(t, size(models.SizeMedium), resolved.Lines[1].Size)
}

func TestResolve_SizeSynonyms(t *testing.T) {
	_, resolved := resolve(t, "venti latte", "starbucks")
	require.Len(t, resolved.Lines, 1)
	assert.Equal(t, size(models.SizeLarge), resolved.Lines[0].Size)
}

func TestResolve_DefaultsToBaseSize(t *testing.T) {
	_, resolved := resolve(t, "a baja blast", "taco-bell")
	require.Len(t, resolved.Lines, 1)
	assert.Nil(t, resolved.Lines[0].Requested)
	assert.Equal(t, size(models.SizeSmall), resolved.Lines[0].Size)
}

func TestResolve_UnofferedSizeFallsBack(t *testing.T) {
	_, resolved := resolve(t, "extra large fries", "mcdonalds")
	require.Len(t, resolved.Lines, 1)
	assert.Equal(t, size(models.SizeExtraLarge), resolved.Lines[0].Requested)
	assert.Equal(t, size(models.SizeSmall), resolved.Lines[0].Size)
}

func TestResolve_UnsizedItemsHaveNoSize(t *testing.T) {
	_, resolved := resolve(t, "large big mac", "mcdonalds")
	require.Len(t, resolved.Lines, 1)
	assert.Nil(t, resolved.Lines[0].Size)
	assert.Equal(t, size(models.SizeLarge), resolved.Lines[0].Requested)
}

func TestResolve_QuantityAndSizeTogether(t *testing.T) {
	_, resolved := resolve(t, "two extra large cokes", "wendys")
	require.Len(t, resolved.Lines, 1)
	assert.Equal(t, 2, resolved.Lines[0].Quantity)
	assert.Equal(t, size(models.SizeExtraLarge), resolved.Lines[0].Requested)
	assert.Equal(t, []bool{true, true, true, false}, resolved.Consumed)
}

func TestResolve_WindowStopsAtPreviousItemAndClause(t *testing.T) {
	_, resolved := resolve(t, "two big macs fries", "mcdonalds")
	require.Len(t, resolved.Lines, 2)
	assert.Equal(t, 2, resolved.Lines[0].Quantity)
	assert.Equal(t, 1, resolved.Lines[1].Quantity)

	_, resolved = resolve(t, "large, fries", "mcdonalds")
	require.Len(t, resolved.Lines, 1)
	assert.Nil(t, resolved.Lines[0].Requested)
}

func TestResolve_WindowIsBounded(t *testing.T) {
	_, resolved := resolve(t, "two of my usual and the fries", "mcdonalds")
	require.Len(t, resolved.Lines, 1)
	assert.Equal(t, 1, resolved.Lines[0].Quantity)
}
