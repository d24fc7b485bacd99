package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// RecipeSet is a per-user set of recipes backed by an edge table. Favorites
// and the shopping cart are both RecipeSets.
//
// Adding a recipe that is already in the set is not an error: the existing
// edge is kept and Add reports created=false.
type RecipeSet struct {
	db      *gorm.DB
	name    string
	table   string
	model   func() interface{}
	newEdge func(userID, recipeID uint) interface{}
}

// NewFavorites returns the favorites set.
func NewFavorites(db *gorm.DB) *RecipeSet {
	return &RecipeSet{
		db:    db,
		name:  "favorite",
		table: "favorites",
		model: func() interface{} { return &models.Favorite{} },
		newEdge: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewShoppingCart returns the shopping cart set.
func NewShoppingCart(db *gorm.DB) *RecipeSet {
	return &RecipeSet{
		db:    db,
		name:  "shopping_cart",
		table: "shopping_cart_items",
		model: func() interface{} { return &models.ShoppingCartItem{} },
		newEdge: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
		},
	}
}

// Add puts recipeID into the user's set and returns the recipe.
func (s *RecipeSet) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, bool, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, notFound("recipe", recipeID)
		}
		return nil, false, err
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(s.newEdge(userID, recipeID))
	if res.Error != nil {
		zerolog.Ctx(ctx).Error().Err(res.Error).Str("set", s.name).Uint("recipe_id", recipeID).Msg("failed to add recipe")
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0
	if created {
		edgeWrites.WithLabelValues(s.name, "add").Inc()
	}
	zerolog.Ctx(ctx).Debug().
		Str("set", s.name).
		Uint("user_id", userID).
		Uint("recipe_id", recipeID).
		Bool("created", created).
		Msg("recipe added")
	return &recipe, created, nil
}

// Remove takes recipeID out of the user's set. A missing edge is a NotFoundError.
func (s *RecipeSet) Remove(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(s.model())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(s.name, recipeID)
	}
	edgeWrites.WithLabelValues(s.name, "remove").Inc()
	zerolog.Ctx(ctx).Debug().Str("set", s.name).Uint("user_id", userID).Uint("recipe_id", recipeID).Msg("recipe removed")
	return nil
}

// List returns the recipes in the user's set, most recently added first.
func (s *RecipeSet) List(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Joins("JOIN "+s.table+" e ON e.recipe_id = recipes.id").
		Where("e.user_id = ?", userID).
		Order("e.created_at DESC").Order("e.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Contains reports whether recipeID is in the user's set.
func (s *RecipeSet) Contains(ctx context.Context, userID, recipeID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(s.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}
