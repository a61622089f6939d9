package evaluation

import "textorder/internal/models"

// ExpectedLine is one order line a scenario expects
type ExpectedLine struct {
	ItemID        string      `json:"item_id"`
	Quantity      int         `json:"quantity"`
	Size          models.Size `json:"size,omitempty"`
	Modifications []string    `json:"modifications,omitempty"`
}

// TestScenario is an order text with the order it should parse into
type TestScenario struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Text        string         `json:"text"`
	Restaurant  string         `json:"restaurant,omitempty"`
	Expected    []ExpectedLine `json:"expected"`
}

// builtinScenarios run against the default catalog
func builtinScenarios() []*TestScenario {
	return []*TestScenario{
		{
			ID:          "mcd_combo",
			Name:        "McDonald's Combo",
			Type:        "combo",
			Description: "Sized sides and a modifier clause that belongs to the sandwich.",
			Text:        "craving a McChicken with large fries and medium sprite, mayo and ketchup included",
			Restaurant:  "mcdonalds",
			Expected: []ExpectedLine{
				{ItemID: "mcdonalds/mcchicken", Quantity: 1, Modifications: []string{"mayo and ketchup included"}},
				{ItemID: "mcdonalds/french-fries", Quantity: 1, Size: models.SizeLarge},
				{ItemID: "mcdonalds/sprite", Quantity: 1, Size: models.SizeMedium},
			},
		},
		{
			ID:          "taco_bell_meal",
			Name:        "Taco Bell Meal",
			Type:        "quantity",
			Description: "Quantity words and an extra modifier.",
			Text:        "two crunchwrap supremes with extra sour cream and a large baja blast",
			Restaurant:  "taco-bell",
			Expected: []ExpectedLine{
				{ItemID: "taco-bell/crunchwrap-supreme", Quantity: 2, Modifications: []string{"extra sour cream"}},
				{ItemID: "taco-bell/baja-blast", Quantity: 1, Size: models.SizeLarge},
			},
		},
		{
			ID:          "big_macs",
			Name:        "Big Macs",
			Type:        "quantity",
			Description: "Plural item names with a drink.",
			Text:        "I want two big macs with extra cheese and a large coke",
			Restaurant:  "mcdonalds",
			Expected: []ExpectedLine{
				{ItemID: "mcdonalds/big-mac", Quantity: 2, Modifications: []string{"extra cheese"}},
				{ItemID: "mcdonalds/coca-cola", Quantity: 1, Size: models.SizeLarge},
			},
		},
		{
			ID:          "starbucks_latte",
			Name:        "Starbucks Latte",
			Type:        "size_synonym",
			Description: "Coffee-shop size names and a milk substitution.",
			Text:        "grande latte with oat milk from starbucks",
			Restaurant:  "starbucks",
			Expected: []ExpectedLine{
				{ItemID: "starbucks/caffe-latte", Quantity: 1, Size: models.SizeMedium, Modifications: []string{"oat milk"}},
			},
		},
		{
			ID:          "wingstop_sides",
			Name:        "Wingstop Sides",
			Type:        "modifier",
			Description: "Dip on the side in a trailing clause.",
			Text:        "a couple of lemon pepper wings and cajun corn, ranch on the side",
			Restaurant:  "wingstop",
			Expected: []ExpectedLine{
				{ItemID: "wingstop/lemon-pepper-wings", Quantity: 2, Modifications: []string{"ranch on the side"}},
				{ItemID: "wingstop/cajun-fried-corn", Quantity: 1},
			},
		},
		{
			ID:          "dairy_queen_treats",
			Name:        "Dairy Queen Treats",
			Type:        "combo",
			Description: "Restaurant named at the end of the order.",
			Text:        "medium oreo blizzard and a dilly bar from dairy queen",
			Restaurant:  "dairy-queen",
			Expected: []ExpectedLine{
				{ItemID: "dairy-queen/oreo-blizzard", Quantity: 1, Size: models.SizeMedium},
				{ItemID: "dairy-queen/dilly-bar", Quantity: 1},
			},
		},
		{
			ID:          "taco_removal",
			Name:        "Taco Removal",
			Type:        "modifier",
			Description: "Numeric quantity and a removed ingredient; the drink takes the base size.",
			Text:        "3 crunchy tacos no lettuce and a baja blast",
			Restaurant:  "taco-bell",
			Expected: []ExpectedLine{
				{ItemID: "taco-bell/crunchy-taco", Quantity: 3, Modifications: []string{"no lettuce"}},
				{ItemID: "taco-bell/baja-blast", Quantity: 1, Size: models.SizeSmall},
			},
		},
		{
			ID:          "restaurant_alias",
			Name:        "Restaurant Alias",
			Type:        "alias",
			Description: "Restaurant nickname with shared item names.",
			Text:        "mickey d's large fries and a coke",
			Restaurant:  "mcdonalds",
			Expected: []ExpectedLine{
				{ItemID: "mcdonalds/french-fries", Quantity: 1, Size: models.SizeLarge},
				{ItemID: "mcdonalds/coca-cola", Quantity: 1, Size: models.SizeSmall},
			},
		},
		{
			ID:          "no_order",
			Name:        "No Order",
			Type:        "negative",
			Description: "Text without any menu item parses into an empty order.",
			Text:        "just thinking about dinner tonight",
		},
	}
}
