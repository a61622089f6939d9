package catalog

import (
	"sync"

	"textorder/internal/models"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustNew(DefaultRestaurants())
	})
	return defaultCatalog
}

type itemOption func(*models.MenuItem)

func aliases(names ...string) itemOption {
	return func(mi *models.MenuItem) { mi.Aliases = append(mi.Aliases, names...) }
}

func customizations(words ...string) itemOption {
	return func(mi *models.MenuItem) { mi.Customizations = append(mi.Customizations, words...) }
}

// sized offers Small at the base price and Medium/Large at the given deltas
func sized(medium, large models.Money) itemOption {
	return func(mi *models.MenuItem) {
		mi.BaseSize = models.SizeSmall
		mi.Sizes = []models.SizeOption{
			{Size: models.SizeSmall},
			{Size: models.SizeMedium, Delta: medium},
			{Size: models.SizeLarge, Delta: large},
		}
	}
}

func item(name string, category models.Category, price models.Money, opts ...itemOption) *models.MenuItem {
	mi := &models.MenuItem{Name: name, Category: category, BasePrice: price}
	for _, opt := range opts {
		opt(mi)
	}
	return mi
}

// DefaultRestaurants returns a fresh copy of the built-in menu data
func DefaultRestaurants() []*models.Restaurant {
	return []*models.Restaurant{
		{
			ID:      "mcdonalds",
			Name:    "McDonald's",
			Aliases: []string{"mcdonald", "mcd", "mcds", "mickey d's", "mickey d", "golden arches"},
			Items: []*models.MenuItem{
				item("McChicken", models.CategoryBurger, 499,
					aliases("mc chicken", "mcchicken sandwich"),
					customizations("mayo", "lettuce", "pickles", "ketchup", "cheese")),
				item("Big Mac", models.CategoryBurger, 649,
					aliases("bigmac"),
					customizations("special sauce", "lettuce", "cheese", "pickles", "onions")),
				item("Quarter Pounder with Cheese", models.CategoryBurger, 629,
					aliases("quarter pounder", "qpc"),
					customizations("cheese", "pickles", "onions", "ketchup", "mustard")),
				item("Chicken McNuggets", models.CategoryEntree, 549,
					aliases("mcnuggets", "nuggets", "chicken nuggets"),
					customizations("bbq sauce", "sweet and sour", "honey mustard", "ranch")),
				item("French Fries", models.CategorySide, 249,
					aliases("fries", "fry"),
					sized(50, 100),
					customizations("salt", "ketchup")),
				item("Sprite", models.CategoryBeverage, 199,
					sized(30, 60),
					customizations("ice", "lemon")),
				item("Coca-Cola", models.CategoryBeverage, 199,
					aliases("coke", "cola"),
					sized(30, 60),
					customizations("ice", "lemon")),
				item("McFlurry with Oreo", models.CategoryDessert, 399,
					aliases("mcflurry", "oreo mcflurry"),
					customizations("oreo", "fudge", "caramel")),
				item("Apple Pie", models.CategoryDessert, 149,
					aliases("baked apple pie")),
			},
		},
		{
			ID:      "taco-bell",
			Name:    "Taco Bell",
			Aliases: []string{"tacobell", "t bell"},
			Items: []*models.MenuItem{
				item("Crunchwrap Supreme", models.CategoryEntree, 549,
					aliases("crunchwrap", "crunch wrap"),
					customizations("sour cream", "beef", "lettuce", "tomatoes", "nacho cheese")),
				item("Baja Blast", models.CategoryBeverage, 229,
					aliases("mountain dew baja blast", "baja"),
					sized(40, 80),
					customizations("ice")),
				item("Crunchy Taco", models.CategoryEntree, 189,
					aliases("taco", "hard shell taco"),
					customizations("lettuce", "cheese", "sour cream", "beef")),
				item("Chalupa Supreme", models.CategoryEntree, 449,
					aliases("chalupa"),
					customizations("sour cream", "lettuce", "tomatoes", "cheese")),
				item("Cheesy Gordita Crunch", models.CategoryEntree, 499,
					aliases("gordita crunch", "cheesy gordita"),
					customizations("spicy ranch", "lettuce", "cheese")),
				item("Bean Burrito", models.CategoryEntree, 199,
					aliases("burrito"),
					customizations("onions", "red sauce", "cheese")),
				item("Nachos BellGrande", models.CategoryEntree, 529,
					aliases("nachos bell grande", "nachos"),
					customizations("sour cream", "beans", "nacho cheese", "jalapenos")),
				item("Chicken Quesadilla", models.CategoryEntree, 519,
					aliases("quesadilla"),
					customizations("creamy jalapeno sauce", "cheese")),
			},
		},
		{
			ID:      "wendys",
			Name:    "Wendy's",
			Aliases: []string{"wendy"},
			Items: []*models.MenuItem{
				item("Baconator", models.CategoryBurger, 799,
					customizations("bacon", "cheese", "ketchup", "mayo")),
				item("Frosty", models.CategoryDessert, 199,
					aliases("chocolate frosty", "vanilla frosty"),
					sized(60, 120)),
				item("Spicy Chicken Sandwich", models.CategoryBurger, 649,
					aliases("spicy chicken"),
					customizations("mayo", "lettuce", "tomato")),
				item("Natural-Cut Fries", models.CategorySide, 229,
					aliases("fries"),
					sized(40, 80),
					customizations("salt", "ketchup")),
				item("Crispy Chicken Nuggets", models.CategoryEntree, 429,
					aliases("nuggets", "chicken nuggets"),
					customizations("bbq sauce", "ranch", "honey mustard")),
				item("Sprite", models.CategoryBeverage, 189,
					sized(40, 80)),
				item("Coca-Cola", models.CategoryBeverage, 189,
					aliases("coke", "cola"),
					sized(40, 80)),
			},
		},
		{
			ID:      "dairy-queen",
			Name:    "Dairy Queen",
			Aliases: []string{"dq"},
			Items: []*models.MenuItem{
				item("Oreo Blizzard", models.CategoryDessert, 499,
					aliases("blizzard", "oreo blizzard treat"),
					sized(150, 250),
					customizations("oreo", "fudge", "whipped cream")),
				item("Dilly Bar", models.CategoryDessert, 199),
				item("Chicken Strip Basket", models.CategoryEntree, 899,
					aliases("chicken strips", "strip basket"),
					customizations("gravy", "ranch", "honey mustard", "toast")),
				item("Flamethrower Burger", models.CategoryBurger, 699,
					aliases("flamethrower"),
					customizations("jalapenos", "flamethrower sauce", "bacon", "cheese")),
			},
		},
		{
			ID:      "starbucks",
			Name:    "Starbucks",
			Aliases: []string{"sbux", "starbs"},
			Items: []*models.MenuItem{
				item("Caffe Latte", models.CategoryBeverage, 395,
					aliases("latte"),
					sized(70, 110),
					customizations("oat milk", "almond milk", "espresso shot", "vanilla syrup")),
				item("Caramel Frappuccino", models.CategoryBeverage, 495,
					aliases("frappuccino", "caramel frap", "frap"),
					sized(70, 110),
					customizations("whipped cream", "caramel drizzle")),
				item("Cold Brew", models.CategoryBeverage, 375,
					aliases("cold brew coffee"),
					sized(60, 100),
					customizations("sweet cream", "vanilla syrup", "ice")),
				item("Butter Croissant", models.CategoryBakery, 295,
					aliases("croissant"),
					customizations("butter", "warmed")),
			},
		},
		{
			ID:      "wingstop",
			Name:    "Wingstop",
			Aliases: []string{"wing stop"},
			Items: []*models.MenuItem{
				item("Lemon Pepper Wings", models.CategoryEntree, 1199,
					aliases("lemon pepper", "lp wings"),
					customizations("ranch", "blue cheese", "celery", "carrots")),
				item("Garlic Parmesan Wings", models.CategoryEntree, 1199,
					aliases("garlic parmesan", "garlic parm", "parmesan wings"),
					customizations("ranch", "blue cheese", "celery", "carrots")),
				item("Cajun Fried Corn", models.CategorySide, 499,
					aliases("cajun corn", "fried corn"),
					customizations("butter", "cajun seasoning")),
				item("Seasoned Fries", models.CategorySide, 329,
					aliases("fries", "cajun fries"),
					sized(100, 200),
					customizations("cajun seasoning", "salt", "ranch")),
			},
		},
	}
}
