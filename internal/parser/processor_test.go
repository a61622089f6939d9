package parser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorder/internal/catalog"
	"textorder/internal/logger"
	"textorder/internal/models"
)

type wantLine struct {
	id   string
	qty  int
	size models.Size
	mods []string
}

func assertLines(t *testing.T, order *models.Order, want []wantLine) {
	t.Helper()
	require.Len(t, order.Items, len(want))
	for i, w := range want {
		got := order.Items[i]
		assert.Equal(t, w.id, got.ItemID, "line %d", i)
		assert.Equal(t, w.qty, got.Quantity, "line %d quantity", i)
		if w.size == "" {
			assert.Nil(t, got.Size, "line %d size", i)
		} else if assert.NotNil(t, got.Size, "line %d size", i) {
			assert.Equal(t, w.size, *got.Size, "line %d size", i)
		}
		if w.mods == nil {
			assert.Empty(t, got.Modifications, "line %d modifications", i)
		} else {
			assert.Equal(t, w.mods, got.Modifications, "line %d modifications", i)
		}
	}
}

func TestParseOrderText_McDonaldsCombo(t *testing.T) {
	p := New(catalog.Default())

	order, err := p.ParseOrderText("craving a McChicken with large fries and medium sprite, mayo and ketchup included")
	require.NoError(t, err)

	require.NotNil(t, order.Restaurant)
	assert.Equal(t, "McDonald's", order.Restaurant.Name)
	assertLines(t, order, []wantLine{
		{id: "mcdonalds/mcchicken", qty: 1, mods: []string{"mayo and ketchup included"}},
		{id: "mcdonalds/french-fries", qty: 1, size: models.SizeLarge},
		{id: "mcdonalds/sprite", qty: 1, size: models.SizeMedium},
	})
	assert.Equal(t, models.Money(1077), order.Subtotal)
	assert.Equal(t, models.Money(86), order.Tax)
	assert.Equal(t, models.Money(1163), order.Total)
	assert.Equal(t, 3, order.ItemCount)
}

func TestParseOrderText_TacoBell(t *testing.T) {
	p := New(catalog.Default())

	order, err := p.ParseOrderText("two crunchwrap supremes with extra sour cream and a large baja blast")
	require.NoError(t, err)

	assert.Equal(t, "Taco Bell", order.RestaurantName())
	assertLines(t, order, []wantLine{
		{id: "taco-bell/crunchwrap-supreme", qty: 2, mods: []string{"extra sour cream"}},
		{id: "taco-bell/baja-blast", qty: 1, size: models.SizeLarge},
	})
	assert.Equal(t, models.Money(1407), order.Subtotal)
	assert.Equal(t, models.Money(113), order.Tax)
	assert.Equal(t, models.Money(1520), order.Total)
}

func TestParseOrderText_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		restaurant string
		lines      []wantLine
	}{
		{
			name:       "big macs and coke",
			text:       "I want two big macs with extra cheese and a large coke",
			restaurant: "mcdonalds",
			lines: []wantLine{
				{id: "mcdonalds/big-mac", qty: 2, mods: []string{"extra cheese"}},
				{id: "mcdonalds/coca-cola", qty: 1, size: models.SizeLarge},
			},
		},
		{
			name:       "starbucks latte",
			text:       "grande latte with oat milk from starbucks",
			restaurant: "starbucks",
			lines: []wantLine{
				{id: "starbucks/caffe-latte", qty: 1, size: models.SizeMedium, mods: []string{"oat milk"}},
			},
		},
		{
			name:       "wingstop",
			text:       "a couple of lemon pepper wings and cajun corn, ranch on the side",
			restaurant: "wingstop",
			lines: []wantLine{
				{id: "wingstop/lemon-pepper-wings", qty: 2, mods: []string{"ranch on the side"}},
				{id: "wingstop/cajun-fried-corn", qty: 1},
			},
		},
		{
			name:       "dairy queen",
			text:       "medium oreo blizzard and a dilly bar from dairy queen",
			restaurant: "dairy-queen",
			lines: []wantLine{
				{id: "dairy-queen/oreo-blizzard", qty: 1, size: models.SizeMedium},
				{id: "dairy-queen/dilly-bar", qty: 1},
			},
		},
		{
			name:       "tacos",
			text:       "3 crunchy tacos no lettuce and a baja blast",
			restaurant: "taco-bell",
			lines: []wantLine{
				{id: "taco-bell/crunchy-taco", qty: 3, mods: []string{"no lettuce"}},
				{id: "taco-bell/baja-blast", qty: 1, size: models.SizeSmall},
			},
		},
		{
			name:       "alias restaurant",
			text:       "mickey d's large fries and a coke",
			restaurant: "mcdonalds",
			lines: []wantLine{
				{id: "mcdonalds/french-fries", qty: 1, size: models.SizeLarge},
				{id: "mcdonalds/coca-cola", qty: 1, size: models.SizeSmall},
			},
		},
	}

	p := New(catalog.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := p.ParseOrderText(tt.text)
			require.NoError(t, err)
			require.NotNil(t, order.Restaurant)
			assert.Equal(t, tt.restaurant, order.Restaurant.ID)
			assertLines(t, order, tt.lines)
		})
	}
}

func TestParseOrderText_NoItems(t *testing.T) {
	order, err := New(catalog.Default()).ParseOrderText("just thinking about dinner tonight")
	require.NoError(t, err)

	assert.Nil(t, order.Restaurant)
	assert.True(t, order.IsEmpty())
	assert.NotNil(t, order.Items)
	assert.Zero(t, order.Total)
}

func TestParseOrderText_InputErrors(t *testing.T) {
	p := New(catalog.Default())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := p.ParseOrderText(text)
		assert.ErrorIs(t, err, models.ErrEmptyInput)
		assert.ErrorIs(t, err, models.ErrInputInvalid)
	}

	_, err := p.ParseOrderText("?!..,")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = p.ParseOrderText("big mac \xff\xfe")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.True(t, errors.Is(err, models.ErrInputInvalid))
}

func TestParseOrderText_SizeDeltaAffectsPrice(t *testing.T) {
	p := New(catalog.Default())

	large, err := p.ParseOrderText("mcdonalds large fries")
	require.NoError(t, err)
	medium, err := p.ParseOrderText("mcdonalds medium fries")
	require.NoError(t, err)

	assert.Equal(t, models.Money(349), large.Subtotal)
	assert.Equal(t, models.Money(299), medium.Subtotal)
	assert.Equal(t, models.Money(50), large.Subtotal-medium.Subtotal)
}

func TestParseOrderText_InfersRestaurantFromItems(t *testing.T) {
	order, err := New(catalog.Default()).ParseOrderText("a frosty and a baconator")
	require.NoError(t, err)
	require.NotNil(t, order.Restaurant)
	assert.Equal(t, "wendys", order.Restaurant.ID)
}

func TestParseOrderText_TiedRestaurantsStayUnknown(t *testing.T) {
	p := New(catalog.Default())

	for _, text := range []string{"wendys or mcdonalds, large fries", "mcdonalds or wendys, large fries"} {
		t.Run(text, func(t *testing.T) {
			a, err := p.Analyze(text)
			require.NoError(t, err)
			assert.Nil(t, a.Restaurant.Restaurant)

			require.Len(t, a.Order.Items, 1)
			assert.Nil(t, a.Order.Restaurant)
			assert.Equal(t, "Unknown", a.Order.RestaurantName())
			assert.True(t, a.Candidates[0].Ambiguous)
		})
	}
}

func TestParseOrderText_NegatedItemsBecomeModifications(t *testing.T) {
	p := New(catalog.Default())

	tests := []struct {
		text string
		item string
		mod  string
	}{
		{"a big mac, no fries", "mcdonalds/big-mac", "no fries"},
		{"a mcchicken without a coke", "mcdonalds/mcchicken", "without a coke"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			order, err := p.ParseOrderText(tt.text)
			require.NoError(t, err)
			require.Len(t, order.Items, 1)
			assert.Equal(t, tt.item, order.Items[0].ItemID)
			assert.Equal(t, 1, order.ItemCount)
			assert.Equal(t, []string{tt.mod}, order.Items[0].Modifications)
		})
	}

	order, err := p.ParseOrderText("baconator and a frosty, hold the fries")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	var mods []string
	for _, line := range order.Items {
		assert.NotEqual(t, "Natural-Cut Fries", line.Name)
		mods = append(mods, line.Modifications...)
	}
	assert.Contains(t, mods, "hold the fries")
}

func TestParseOrderText_MergesRepeatedItems(t *testing.T) {
	order, err := New(catalog.Default()).ParseOrderText("a big mac, a big mac and one more big mac")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, models.Money(649*3), order.Subtotal)
}

func TestParseOrderText_Idempotent(t *testing.T) {
	p := New(catalog.Default())
	text := "two crunchwrap supremes with extra sour cream and a large baja blast"

	first, err := p.ParseOrderText(text)
	require.NoError(t, err)
	second, err := p.ParseOrderText(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseOrderText_EveryMenuItemWithItsRestaurant(t *testing.T) {
	c := catalog.Default()
	p := New(c)

	for _, r := range c.Restaurants() {
		for _, item := range r.Items {
			text := r.Name + " " + item.Name
			t.Run(text, func(t *testing.T) {
				order, err := p.ParseOrderText(text)
				require.NoError(t, err)
				require.NotNil(t, order.Restaurant)
				assert.Equal(t, r.ID, order.Restaurant.ID)
				require.Len(t, order.Items, 1)
				assert.Equal(t, item.ID, order.Items[0].ItemID)
				assert.Equal(t, order.Subtotal+order.Tax, order.Total)
			})
		}
	}
}

func TestAnalyze_RecordsStages(t *testing.T) {
	a, err := New(catalog.Default()).Analyze("a big mac")
	require.NoError(t, err)

	var stages []string
	for _, s := range a.Stages {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{StageStart, StageDetect, StageMatch, StageResolve, StageModifiers, StageAssemble, StageDone}, stages)
	assert.Len(t, a.Candidates, 1)
	assert.Len(t, a.Resolutions, 1)
}

func TestParse_HonorsContext(t *testing.T) {
	p := New(catalog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Parse(ctx, "a big mac")
	assert.ErrorIs(t, err, context.Canceled)

	order, err := p.Parse(context.Background(), "a big mac")
	require.NoError(t, err)
	assert.Len(t, order.Items, 1)
}

func TestRuleParser_LogsParses(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("parser", logger.WithOutput(&buf), logger.WithLevel(logger.LevelDebug))
	p := New(catalog.Default(), WithLogger(log), WithMatchThreshold(0.95))

	order, err := p.ParseOrderText("mcdonalds fries and a big mac")
	require.NoError(t, err)

	// fries score below the raised threshold
	assertLines(t, order, []wantLine{{id: "mcdonalds/big-mac", qty: 1}})
	assert.True(t, strings.Contains(buf.String(), `"action":"order_parsed"`))
	assert.Equal(t, "rule", p.Name())
}
