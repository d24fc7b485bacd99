package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/models"
)

const recipeImagePrefix = "recipes/images"

// RecipeInput carries a create or partial update. On update, nil fields are
// left untouched; on create, all of them are required.
type RecipeInput struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       media.ImageInput
	Tags        []uint
	Ingredients []IngredientAmount
}

// RecipeView is a recipe together with the flags relative to one viewer.
type RecipeView struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeFilter narrows a recipe listing.
type RecipeFilter struct {
	AuthorID         *uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

// RecipeService owns the recipe aggregate: the recipe row, its tag links and
// its ingredient lines are always written in one transaction.
type RecipeService struct {
	db        *gorm.DB
	validator *CompositionValidator
	images    *media.Store
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, validator *CompositionValidator, images *media.Store) *RecipeService {
	return &RecipeService{
		db:        db,
		validator: validator,
		images:    images,
	}
}

// CreateRecipe validates and stores a new recipe owned by authorID.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error) {
	if err := requireAll(in); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, Composition{
		CookingTime: in.CookingTime,
		Tags:        in.Tags,
		Ingredients: in.Ingredients,
	}); err != nil {
		return nil, err
	}

	key, err := s.images.Put(ctx, recipeImagePrefix, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(*in.Name),
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
		Image:       key,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, in.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		_ = s.images.Remove(ctx, key)
		zerolog.Ctx(ctx).Error().Err(err).Uint("author_id", authorID).Msg("failed to create recipe")
		return nil, err
	}

	recipeWrites.WithLabelValues("create").Inc()
	zerolog.Ctx(ctx).Debug().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe applies a partial update. Supplied tags replace the tag set and
// supplied ingredients replace every existing line. The author never changes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uint, in RecipeInput) (*RecipeView, error) {
	existing, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name", ErrRequired)
	}
	if in.Text != nil && strings.TrimSpace(*in.Text) == "" {
		return nil, invalid("text", ErrRequired)
	}
	if err := s.validator.Validate(ctx, Composition{
		CookingTime: in.CookingTime,
		Tags:        in.Tags,
		Ingredients: in.Ingredients,
	}); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}

	var newKey string
	if in.Image != nil {
		if newKey, err = s.images.Put(ctx, recipeImagePrefix, in.Image); err != nil {
			return nil, err
		}
		updates["image"] = newKey
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{ID: recipeID}).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Tags != nil {
			if err := replaceTags(tx, recipeID, in.Tags); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			return replaceIngredients(tx, recipeID, in.Ingredients)
		}
		return nil
	})
	if err != nil {
		_ = s.images.Remove(ctx, newKey)
		zerolog.Ctx(ctx).Error().Err(err).Uint("recipe_id", recipeID).Msg("failed to update recipe")
		return nil, err
	}
	if newKey != "" {
		_ = s.images.Remove(ctx, existing.Image)
	}

	recipeWrites.WithLabelValues("update").Inc()
	zerolog.Ctx(ctx).Debug().Uint("recipe_id", recipeID).Msg("recipe updated")
	return s.GetRecipe(ctx, userID, recipeID)
}

// DeleteRecipe removes a recipe with its lines, tag links and edges.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uint) error {
	existing, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.RecipeIngredient{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipeID).Error
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("recipe_id", recipeID).Msg("failed to delete recipe")
		return err
	}

	_ = s.images.Remove(ctx, existing.Image)
	recipeWrites.WithLabelValues("delete").Inc()
	zerolog.Ctx(ctx).Debug().Uint("recipe_id", recipeID).Msg("recipe deleted")
	return nil
}

// GetRecipe loads one recipe. viewerID 0 is an anonymous caller.
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, recipeID uint) (*RecipeView, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", recipeID)
		}
		return nil, err
	}
	views, err := s.withFlags(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes, newest first, and the total count.
// Favorite and cart filters are ignored for anonymous viewers.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uint, f RecipeFilter) ([]RecipeView, int64, error) {
	db := s.db.WithContext(ctx)
	filtered := func() *gorm.DB {
		q := db.Model(&models.Recipe{})
		if f.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *f.AuthorID)
		}
		if len(f.Tags) > 0 {
			q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.Tags))
		}
		if f.IsFavorited && viewerID != 0 {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		if f.IsInShoppingCart && viewerID != 0 {
			q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartItem{}).
				Select("recipe_id").Where("user_id = ?", viewerID))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := preloadRecipe(filtered()).Order("recipes.created_at DESC").Order("recipes.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.withFlags(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", recipeID)
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func (s *RecipeService) withFlags(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = recipes[i]
	}
	if viewerID == 0 || len(recipes) == 0 {
		return views, nil
	}

	ids := make([]uint, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	favorited, err := edgeRecipeIDs(s.db.WithContext(ctx), &models.Favorite{}, viewerID, ids)
	if err != nil {
		return nil, err
	}
	carted, err := edgeRecipeIDs(s.db.WithContext(ctx), &models.ShoppingCartItem{}, viewerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].IsFavorited = favorited[views[i].ID]
		views[i].IsInShoppingCart = carted[views[i].ID]
	}
	return views, nil
}

func requireAll(in RecipeInput) error {
	switch {
	case in.Name == nil || strings.TrimSpace(*in.Name) == "":
		return invalid("name", ErrRequired)
	case in.Text == nil || strings.TrimSpace(*in.Text) == "":
		return invalid("text", ErrRequired)
	case in.CookingTime == nil:
		return invalid("cooking_time", ErrRequired)
	case in.Image == nil:
		return invalid("image", ErrRequired)
	case in.Tags == nil:
		return invalid("tags", ErrEmptyTags)
	case in.Ingredients == nil:
		return invalid("ingredients", ErrEmptyIngredients)
	}
	return nil
}

func preloadRecipe(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// replaceTags drops every tag link of the recipe and inserts the given set.
func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	rows := make([]models.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	return tx.Create(&rows).Error
}

// replaceIngredients deletes every line of the recipe and bulk-inserts the new ones.
func replaceIngredients(tx *gorm.DB, recipeID uint, lines []IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	rows := make([]models.RecipeIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// edgeRecipeIDs reports which of recipeIDs the user has an edge to in the given table.
func edgeRecipeIDs(db *gorm.DB, model interface{}, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	var hits []uint
	if err := db.Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &hits).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(hits))
	for _, id := range hits {
		out[id] = true
	}
	return out, nil
}
