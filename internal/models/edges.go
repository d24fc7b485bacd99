package models

import "time"

// Favorite marks a recipe as favorited by a user. Unique per (user, recipe).
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCartItem puts a recipe into a user's shopping cart. Unique per (user, recipe).
type ShoppingCartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}

// Follow is a directed follower -> author edge.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;check:follower_id <> author_id" json:"follower_id"`
	AuthorID   uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"author_id"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
