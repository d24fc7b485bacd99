package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts, avatars and subscriptions.
type UserHandler struct {
	users   service.IUserService
	follows service.IFollowService
	recipes service.IRecipeService
	tokens  middleware.TokenValidator
	present presenter
}

func NewUserHandler(
	users service.IUserService,
	follows service.IFollowService,
	recipes service.IRecipeService,
	tokens middleware.TokenValidator,
	present presenter,
) *UserHandler {
	return &UserHandler{
		users:   users,
		follows: follows,
		recipes: recipes,
		tokens:  tokens,
		present: present,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.GET("/me", required, h.Me)
		users.PUT("/me/avatar", required, h.SetAvatar)
		users.DELETE("/me/avatar", required, h.DeleteAvatar)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuth(h.tokens), h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.present.user(*user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	subscribed, err := h.follows.Subscribed(ctx, middleware.CurrentUserID(c), []uint{id})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.present.user(*user, subscribed[id]))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	img, err := media.ParseDataURI(req.Avatar)
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.users.SetAvatar(c.Request.Context(), middleware.CurrentUserID(c), img)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": h.present.images.URL(user.Avatar)})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists followed authors; recipes_limit caps each author's recipes.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, ok := pageParams(c)
	if !ok {
		return
	}
	recipesLimit, ok := optionalInt(c, "recipes_limit")
	if !ok {
		return
	}

	authors, total, err := h.follows.ListFollowing(c.Request.Context(), middleware.CurrentUserID(c), service.FollowingQuery{
		Limit:        page.Limit,
		Offset:       page.Offset,
		RecipesLimit: recipesLimit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]types.Subscription, len(authors))
	for i, a := range authors {
		out[i] = h.present.subscription(a)
	}
	c.JSON(http.StatusOK, types.Page[types.Subscription]{Count: total, Results: out})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipesLimit, ok := optionalInt(c, "recipes_limit")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	viewer := middleware.CurrentUserID(c)

	author, err := h.follows.Follow(ctx, viewer, id)
	if err != nil {
		fail(c, err)
		return
	}

	views, count, err := h.recipes.ListRecipes(ctx, viewer, service.RecipeFilter{AuthorID: &id, Limit: recipesLimit})
	if err != nil {
		fail(c, err)
		return
	}
	recipes := make([]types.ShortRecipe, len(views))
	for i, v := range views {
		recipes[i] = h.present.shortRecipe(v.Recipe)
	}
	c.JSON(http.StatusCreated, types.Subscription{
		User:         h.present.user(*author, true),
		Recipes:      recipes,
		RecipesCount: count,
	})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
