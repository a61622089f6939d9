package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"textorder/internal/models"
)

// File is the on-disk representation of a catalog
type File struct {
	Restaurants []RestaurantFile `yaml:"restaurants"`
}

// RestaurantFile is one restaurant entry of a catalog file
type RestaurantFile struct {
	ID      string     `yaml:"id,omitempty"`
	Name    string     `yaml:"name"`
	Aliases []string   `yaml:"aliases,omitempty"`
	Items   []ItemFile `yaml:"items"`
}

// ItemFile is one menu item entry of a catalog file. Prices are decimal
// dollar strings so they never pass through a float.
type ItemFile struct {
	Name           string     `yaml:"name"`
	Category       string     `yaml:"category"`
	Price          string     `yaml:"price"`
	BaseSize       string     `yaml:"base_size,omitempty"`
	Sizes          []SizeFile `yaml:"sizes,omitempty"`
	Aliases        []string   `yaml:"aliases,omitempty"`
	Customizations []string   `yaml:"customizations,omitempty"`
}

// SizeFile is a size variant and its price delta
type SizeFile struct {
	Size  string `yaml:"size"`
	Delta string `yaml:"delta"`
}

// LoadFile reads a YAML catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	restaurants, err := file.toModels()
	if err != nil {
		return nil, err
	}
	return New(restaurants)
}

func (f *File) toModels() ([]*models.Restaurant, error) {
	restaurants := make([]*models.Restaurant, 0, len(f.Restaurants))
	for _, rf := range f.Restaurants {
		r := &models.Restaurant{ID: rf.ID, Name: rf.Name, Aliases: rf.Aliases}
		for _, itf := range rf.Items {
			mi, err := itf.toModel()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, rf.Name, err)
			}
			r.Items = append(r.Items, mi)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, nil
}

func (itf ItemFile) toModel() (*models.MenuItem, error) {
	price, err := models.ParseMoney(itf.Price)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", itf.Name, err)
	}
	mi := &models.MenuItem{
		Name:           itf.Name,
		Category:       models.Category(itf.Category),
		BasePrice:      price,
		Aliases:        itf.Aliases,
		Customizations: itf.Customizations,
	}
	if itf.BaseSize != "" {
		size, ok := models.ParseSize(itf.BaseSize)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown base size %q", itf.Name, itf.BaseSize)
		}
		mi.BaseSize = size
	}
	for _, sf := range itf.Sizes {
		size, ok := models.ParseSize(sf.Size)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown size %q", itf.Name, sf.Size)
		}
		delta := models.Money(0)
		if sf.Delta != "" {
			if delta, err = models.ParseMoney(sf.Delta); err != nil {
				return nil, fmt.Errorf("item %q size %s: %w", itf.Name, size, err)
			}
		}
		mi.Sizes = append(mi.Sizes, models.SizeOption{Size: size, Delta: delta})
	}
	// A sized item without an explicit base size is based on its first size
	if mi.BaseSize == "" && len(mi.Sizes) > 0 {
		mi.BaseSize = mi.Sizes[0].Size
	}
	return mi, nil
}

// Encode writes a catalog in the file format accepted by Parse
func Encode(c *Catalog) ([]byte, error) {
	var file File
	for _, r := range c.Restaurants() {
		rf := RestaurantFile{ID: r.ID, Name: r.Name, Aliases: r.Aliases}
		for _, mi := range r.Items {
			itf := ItemFile{
				Name:           mi.Name,
				Category:       string(mi.Category),
				Price:          decimal(mi.BasePrice),
				BaseSize:       string(mi.BaseSize),
				Aliases:        mi.Aliases,
				Customizations: mi.Customizations,
			}
			for _, opt := range mi.Sizes {
				itf.Sizes = append(itf.Sizes, SizeFile{Size: string(opt.Size), Delta: decimal(opt.Delta)})
			}
			rf.Items = append(rf.Items, itf)
		}
		file.Restaurants = append(file.Restaurants, rf)
	}
	return yaml.Marshal(&file)
}

func decimal(m models.Money) string {
	return strings.TrimPrefix(m.String(), "$")
}
