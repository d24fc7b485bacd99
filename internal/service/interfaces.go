package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for account reads and avatars
type IUserService interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	SetAvatar(ctx context.Context, userID uint, in media.ImageInput) (*models.User, error)
	DeleteAvatar(ctx context.Context, userID uint) error
}

// ICatalogService defines the interface for tag and ingredient reads
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uint, in RecipeInput) (*RecipeView, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uint) error
	GetRecipe(ctx context.Context, viewerID, recipeID uint) (*RecipeView, error)
	ListRecipes(ctx context.Context, viewerID uint, f RecipeFilter) ([]RecipeView, int64, error)
}

// IRecipeSet defines the interface shared by favorites and the shopping cart
type IRecipeSet interface {
	Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, bool, error)
	Remove(ctx context.Context, userID, recipeID uint) error
	List(ctx context.Context, userID uint) ([]models.Recipe, error)
}

// IShoppingListService defines the interface for cart aggregation
type IShoppingListService interface {
	Build(ctx context.Context, userID uint) (*ShoppingList, error)
}

// IFollowService defines the interface for subscriptions
type IFollowService interface {
	Follow(ctx context.Context, followerID, authorID uint) (*models.User, error)
	Unfollow(ctx context.Context, followerID, authorID uint) error
	ListFollowing(ctx context.Context, followerID uint, q FollowingQuery) ([]FollowedAuthor, int64, error)
	Subscribed(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ CatalogLookup        = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRecipeSet           = (*RecipeSet)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IFollowService       = (*FollowService)(nil)
)
