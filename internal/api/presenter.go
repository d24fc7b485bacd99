package api

import (
	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// presenter turns stored models into response shapes. Image keys become
// public URLs here and nowhere else.
type presenter struct {
	images *media.Store
}

func (p presenter) user(u models.User, subscribed bool) types.User {
	return types.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       p.images.URL(u.Avatar),
	}
}

func (p presenter) tag(t models.Tag) types.Tag {
	return types.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color}
}

func (p presenter) tags(ts []models.Tag) []types.Tag {
	out := make([]types.Tag, len(ts))
	for i, t := range ts {
		out[i] = p.tag(t)
	}
	return out
}

func (p presenter) ingredient(i models.Ingredient) types.Ingredient {
	return types.Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func (p presenter) recipe(v service.RecipeView, authorSubscribed bool) types.Recipe {
	lines := make([]types.RecipeIngredient, len(v.Ingredients))
	for i, line := range v.Ingredients {
		lines[i] = types.RecipeIngredient{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}
	return types.Recipe{
		ID:               v.ID,
		Tags:             p.tags(v.Tags),
		Author:           p.user(v.Author, authorSubscribed),
		Ingredients:      lines,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            p.images.URL(v.Image),
		Text:             v.Text,
		CookingTime:      v.CookingTime,
	}
}

func (p presenter) shortRecipe(r models.Recipe) types.ShortRecipe {
	return types.ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p presenter) shortRecipes(rs []models.Recipe) []types.ShortRecipe {
	out := make([]types.ShortRecipe, len(rs))
	for i, r := range rs {
		out[i] = p.shortRecipe(r)
	}
	return out
}

func (p presenter) subscription(f service.FollowedAuthor) types.Subscription {
	return types.Subscription{
		User:         p.user(f.Author, true),
		Recipes:      p.shortRecipes(f.Recipes),
		RecipesCount: f.RecipesCount,
	}
}
