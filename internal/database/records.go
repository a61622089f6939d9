package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/jinzhu/gorm"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// RestaurantRecord is a stored restaurant
type RestaurantRecord struct {
	ID        string      `gorm:"primary_key"`
	Name      string      `gorm:"not null"`
	Aliases   StringSlice `gorm:"type:text"`
	Position  int
	CreatedAt time.Time
}

func (RestaurantRecord) TableName() string {
	return "restaurants"
}

// MenuItemRecord is a stored menu item
type MenuItemRecord struct {
	ID             string `gorm:"primary_key"`
	RestaurantID   string `gorm:"index;not null"`
	Name           string `gorm:"not null"`
	Category       string
	BasePriceCents int64
	BaseSize       string
	Aliases        StringSlice `gorm:"type:text"`
	Customizations StringSlice `gorm:"type:text"`
	Position       int
}

func (MenuItemRecord) TableName() string {
	return "menu_items"
}

// SizeRecord is one size a stored menu item is offered in
type SizeRecord struct {
	ID         uint   `gorm:"primary_key"`
	ItemID     string `gorm:"index;not null"`
	Size       string
	DeltaCents int64
	Position   int
}

func (SizeRecord) TableName() string {
	return "menu_item_sizes"
}

// EvaluationRecord is one stored evaluation run of a parser on a scenario
type EvaluationRecord struct {
	gorm.Model
	Parser      string `gorm:"index"`
	Scenario    string `gorm:"index"`
	MetricsJSON string `gorm:"type:text"`
	ExactMatch  float64
	Error       string
}

func (EvaluationRecord) TableName() string {
	return "evaluations"
}

// Metrics decodes the stored metric values
func (r *EvaluationRecord) Metrics() (map[string]float64, error) {
	metrics := make(map[string]float64)
	if r.MetricsJSON == "" {
		return metrics, nil
	}
	if err := json.Unmarshal([]byte(r.MetricsJSON), &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// ParseRecord logs one parse request. Only the outcome is kept, not the order.
type ParseRecord struct {
	gorm.Model
	RequestID  string `gorm:"index"`
	Parser     string `gorm:"index"`
	Text       string `gorm:"type:text"`
	Restaurant string
	ItemCount  int
	TotalCents int64
	DurationMS float64
	Error      string
}

func (ParseRecord) TableName() string {
	return "parses"
}
