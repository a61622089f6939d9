// Package catalog holds the immutable, indexed set of restaurants and menu items
// that order text is parsed against.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"textorder/internal/models"
	"textorder/internal/textnorm"
)

// ErrInvalidCatalog is returned when catalog data violates its invariants
var ErrInvalidCatalog = errors.New("invalid catalog")

// AliasRef ties an alias phrase to the menu item it names
type AliasRef struct {
	Item      *models.MenuItem
	Phrase    textnorm.Phrase
	Canonical bool
}

// Catalog is built once and never mutated; callers must treat returned
// restaurants and items as read-only.
type Catalog struct {
	restaurants []*models.Restaurant
	byID        map[string]*models.Restaurant
	items       []*models.MenuItem
	itemByID    map[string]*models.MenuItem
	position    map[*models.MenuItem]int

	aliasIndex  map[string][]AliasRef
	joinedIndex map[string][]AliasRef
	itemPhrases map[*models.MenuItem][]textnorm.Phrase
	customKeys  map[*models.MenuItem]map[string]bool
	names       map[string][]textnorm.Phrase
	signatures  map[string][]textnorm.Phrase
}

// New validates and indexes restaurants. The input is copied.
func New(restaurants []*models.Restaurant) (*Catalog, error) {
	c := &Catalog{
		byID:        make(map[string]*models.Restaurant),
		itemByID:    make(map[string]*models.MenuItem),
		position:    make(map[*models.MenuItem]int),
		aliasIndex:  make(map[string][]AliasRef),
		joinedIndex: make(map[string][]AliasRef),
		itemPhrases: make(map[*models.MenuItem][]textnorm.Phrase),
		customKeys:  make(map[*models.MenuItem]map[string]bool),
		names:       make(map[string][]textnorm.Phrase),
		signatures:  make(map[string][]textnorm.Phrase),
	}

	for _, src := range restaurants {
		r, err := copyRestaurant(src)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate restaurant id %q", ErrInvalidCatalog, r.ID)
		}
		c.byID[r.ID] = r
		c.restaurants = append(c.restaurants, r)
		c.names[r.ID] = uniquePhrases(append([]string{r.Name}, r.Aliases...))

		for _, item := range r.Items {
			if _, dup := c.itemByID[item.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate item %q at %s", ErrInvalidCatalog, item.Name, r.Name)
			}
			c.itemByID[item.ID] = item
			c.position[item] = len(c.items)
			c.items = append(c.items, item)
			c.indexItem(item)
		}
	}

	c.buildSignatures()
	return c, nil
}

// MustNew is New for static data
func MustNew(restaurants []*models.Restaurant) *Catalog {
	c, err := New(restaurants)
	if err != nil {
		panic(err)
	}
	return c
}

func copyRestaurant(src *models.Restaurant) (*models.Restaurant, error) {
	if src == nil || strings.TrimSpace(src.Name) == "" {
		return nil, fmt.Errorf("%w: restaurant name is required", ErrInvalidCatalog)
	}
	r := &models.Restaurant{
		ID:      src.ID,
		Name:    src.Name,
		Aliases: append([]string(nil), src.Aliases...),
	}
	if r.ID == "" {
		r.ID = textnorm.Slug(r.Name)
	}
	for _, srcItem := range src.Items {
		if srcItem == nil {
			continue
		}
		item := *srcItem
		item.RestaurantID = r.ID
		item.ID = r.ID + "/" + textnorm.Slug(item.Name)
		item.Sizes = append([]models.SizeOption(nil), srcItem.Sizes...)
		item.Aliases = append([]string(nil), srcItem.Aliases...)
		item.Customizations = append([]string(nil), srcItem.Customizations...)
		if err := models.ValidateMenuItem(&item); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, r.Name, err)
		}
		r.Items = append(r.Items, &item)
	}
	return r, nil
}

func uniquePhrases(texts []string) []textnorm.Phrase {
	seen := make(map[string]bool)
	var phrases []textnorm.Phrase
	for _, text := range texts {
		p := textnorm.NewPhrase(text)
		if p.Len() == 0 || seen[p.Signature()] {
			continue
		}
		seen[p.Signature()] = true
		phrases = append(phrases, p)
	}
	return phrases
}

func (c *Catalog) indexItem(item *models.MenuItem) {
	phrases := uniquePhrases(append([]string{item.Name}, item.Aliases...))
	c.itemPhrases[item] = phrases
	canonical := textnorm.NewPhrase(item.Name).Signature()

	for _, p := range phrases {
		ref := AliasRef{Item: item, Phrase: p, Canonical: p.Signature() == canonical}
		seen := make(map[string]bool, p.Len())
		for _, key := range p.Keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			c.aliasIndex[key] = append(c.aliasIndex[key], ref)
		}
		if p.Len() > 1 {
			c.joinedIndex[p.Joined] = append(c.joinedIndex[p.Joined], ref)
		}
	}

	keys := make(map[string]bool)
	for _, custom := range item.Customizations {
		for _, key := range textnorm.NewPhrase(custom).Keys {
			keys[key] = true
		}
	}
	c.customKeys[item] = keys
}

// buildSignatures collects, per restaurant, the item phrases no other restaurant uses
func (c *Catalog) buildSignatures() {
	owners := make(map[string]map[string]bool)
	var order []string
	phraseBySig := make(map[string]textnorm.Phrase)
	for _, item := range c.items {
		for _, p := range c.itemPhrases[item] {
			sig := p.Signature()
			if owners[sig] == nil {
				owners[sig] = make(map[string]bool)
				order = append(order, sig)
				phraseBySig[sig] = p
			}
			owners[sig][item.RestaurantID] = true
		}
	}
	for _, sig := range order {
		if len(owners[sig]) != 1 {
			continue
		}
		for id := range owners[sig] {
			c.signatures[id] = append(c.signatures[id], phraseBySig[sig])
		}
	}
}

// Restaurants returns all restaurants in catalog order
func (c *Catalog) Restaurants() []*models.Restaurant {
	return c.restaurants
}

// Restaurant looks up a restaurant by id
func (c *Catalog) Restaurant(id string) (*models.Restaurant, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Items returns every menu item in catalog order
func (c *Catalog) Items() []*models.MenuItem {
	return c.items
}

// ItemsFor returns the menu of one restaurant
func (c *Catalog) ItemsFor(restaurantID string) []*models.MenuItem {
	if r, ok := c.byID[restaurantID]; ok {
		return r.Items
	}
	return nil
}

// Item looks up a menu item by id
func (c *Catalog) Item(id string) (*models.MenuItem, bool) {
	item, ok := c.itemByID[id]
	return item, ok
}

// Position returns the catalog order of an item, used to break ties
func (c *Catalog) Position(item *models.MenuItem) int {
	if pos, ok := c.position[item]; ok {
		return pos
	}
	return len(c.items)
}

// AliasesWithKey returns every alias phrase containing the normalized token key
func (c *Catalog) AliasesWithKey(key string) []AliasRef {
	return c.aliasIndex[key]
}

// AliasesJoined returns multi-word aliases written as a single token, e.g. "bigmac"
func (c *Catalog) AliasesJoined(key string) []AliasRef {
	return c.joinedIndex[key]
}

// ItemPhrases returns the canonical name and aliases of an item
func (c *Catalog) ItemPhrases(item *models.MenuItem) []textnorm.Phrase {
	return c.itemPhrases[item]
}

// CustomizationKeys returns the normalized words of an item's known customizations
func (c *Catalog) CustomizationKeys(item *models.MenuItem) map[string]bool {
	return c.customKeys[item]
}

// NamePhrases returns the name and aliases of a restaurant
func (c *Catalog) NamePhrases(restaurantID string) []textnorm.Phrase {
	return c.names[restaurantID]
}

// SignaturePhrases returns the item phrases that only this restaurant uses
func (c *Catalog) SignaturePhrases(restaurantID string) []textnorm.Phrase {
	return c.signatures[restaurantID]
}

// FindRestaurant resolves a restaurant by id, name or alias
func (c *Catalog) FindRestaurant(name string) (*models.Restaurant, bool) {
	if r, ok := c.byID[name]; ok {
		return r, true
	}
	sig := textnorm.NewPhrase(name).Signature()
	if sig == "" {
		return nil, false
	}
	for _, r := range c.restaurants {
		for _, p := range c.names[r.ID] {
			if p.Signature() == sig {
				return r, true
			}
		}
	}
	return nil, false
}

// FindItem resolves an item by name or alias. With a restaurant id the search
// is scoped to that menu first and then falls back to a catalog-wide match
// that is unique to a single item.
func (c *Catalog) FindItem(restaurantID, name string) (*models.MenuItem, bool) {
	p := textnorm.NewPhrase(name)
	if p.Len() == 0 {
		return nil, false
	}
	sig := p.Signature()

	var matches []*models.MenuItem
	for _, ref := range c.aliasIndex[p.Keys[0]] {
		if ref.Phrase.Signature() != sig {
			continue
		}
		if restaurantID != "" && ref.Item.RestaurantID == restaurantID {
			return ref.Item, true
		}
		if !containsItem(matches, ref.Item) {
			matches = append(matches, ref.Item)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return nil, false
}

func containsItem(items []*models.MenuItem, item *models.MenuItem) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
