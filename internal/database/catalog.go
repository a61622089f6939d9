package database

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"textorder/internal/catalog"
	"textorder/internal/models"
)

// CatalogEmpty reports whether no restaurant is stored
func (s *Store) CatalogEmpty() (bool, error) {
	var count int
	if err := s.db.Model(&RestaurantRecord{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// SeedCatalog stores the catalog unless one is already stored. It reports
// whether anything was written.
func (s *Store) SeedCatalog(c *catalog.Catalog) (bool, error) {
	empty, err := s.CatalogEmpty()
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	if err := s.SaveCatalog(c); err != nil {
		return false, err
	}
	return true, nil
}

// SaveCatalog replaces the stored catalog
func (s *Store) SaveCatalog(c *catalog.Catalog) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&SizeRecord{}, &MenuItemRecord{}, &RestaurantRecord{}} {
			if err := tx.Delete(model).Error; err != nil {
				return err
			}
		}

		for i, r := range c.Restaurants() {
			rec := RestaurantRecord{ID: r.ID, Name: r.Name, Aliases: r.Aliases, Position: i}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to store restaurant %s: %w", r.ID, err)
			}
			for j, item := range r.Items {
				if err := createItem(tx, item, j); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func createItem(tx *gorm.DB, item *models.MenuItem, position int) error {
	rec := MenuItemRecord{
		ID:             item.ID,
		RestaurantID:   item.RestaurantID,
		Name:           item.Name,
		Category:       string(item.Category),
		BasePriceCents: int64(item.BasePrice),
		BaseSize:       string(item.BaseSize),
		Aliases:        item.Aliases,
		Customizations: item.Customizations,
		Position:       position,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to store item %s: %w", item.ID, err)
	}
	for k, opt := range item.Sizes {
		size := SizeRecord{ItemID: item.ID, Size: string(opt.Size), DeltaCents: int64(opt.Delta), Position: k}
		if err := tx.Create(&size).Error; err != nil {
			return fmt.Errorf("failed to store size of %s: %w", item.ID, err)
		}
	}
	return nil
}

// LoadCatalog builds a catalog from the stored menu data
func (s *Store) LoadCatalog() (*catalog.Catalog, error) {
	var restaurants []RestaurantRecord
	if err := s.db.Order("position").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("%w: no stored catalog", ErrNotFound)
	}

	var items []MenuItemRecord
	if err := s.db.Order("restaurant_id, position").Find(&items).Error; err != nil {
		return nil, err
	}
	var sizes []SizeRecord
	if err := s.db.Order("item_id, position").Find(&sizes).Error; err != nil {
		return nil, err
	}

	sizesByItem := make(map[string][]models.SizeOption)
	for _, sr := range sizes {
		sizesByItem[sr.ItemID] = append(sizesByItem[sr.ItemID], models.SizeOption{
			Size:  models.Size(sr.Size),
			Delta: models.Money(sr.DeltaCents),
		})
	}
	itemsByRestaurant := make(map[string][]*models.MenuItem)
	for _, ir := range items {
		itemsByRestaurant[ir.RestaurantID] = append(itemsByRestaurant[ir.RestaurantID], &models.MenuItem{
			ID:             ir.ID,
			RestaurantID:   ir.RestaurantID,
			Name:           ir.Name,
			Category:       models.Category(ir.Category),
			BasePrice:      models.Money(ir.BasePriceCents),
			BaseSize:       models.Size(ir.BaseSize),
			Sizes:          sizesByItem[ir.ID],
			Aliases:        ir.Aliases,
			Customizations: ir.Customizations,
		})
	}

	out := make([]*models.Restaurant, 0, len(restaurants))
	for _, rr := range restaurants {
		out = append(out, &models.Restaurant{
			ID:      rr.ID,
			Name:    rr.Name,
			Aliases: rr.Aliases,
			Items:   itemsByRestaurant[rr.ID],
		})
	}
	return catalog.New(out)
}
