package models

// Ingredient is immutable reference data.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;index;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

// Tag is immutable reference data addressed by slug in filters.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:32;not null;uniqueIndex" json:"name"`
	Slug  string `gorm:"size:32;not null;uniqueIndex" json:"slug"`
	Color string `gorm:"size:7" json:"color,omitempty"`
}
