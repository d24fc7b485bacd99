package models

import (
	"time"
)

// Recipe is the aggregate root: it owns its ingredient lines and tag links.
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string             `gorm:"size:256;not null" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	Image       string             `gorm:"size:255" json:"image"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeIngredient is one composition line. Lines are ordered by ID, which
// follows submission order because they are bulk-inserted.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}

// RecipeTag is a row of the recipe_tags join table.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
