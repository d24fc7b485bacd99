package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxImageBytes = 10 << 20

var errBadForm = errors.New("malformed form field")

type RecipeHandler struct {
	recipes   service.IRecipeService
	favorites service.IRecipeSet
	cart      service.IRecipeSet
	shopping  service.IShoppingListService
	follows   service.IFollowService
	tokens    middleware.TokenValidator
	limiter   middleware.Limiter
	present   presenter
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	favorites, cart service.IRecipeSet,
	shopping service.IShoppingListService,
	follows service.IFollowService,
	tokens middleware.TokenValidator,
	limiter middleware.Limiter,
	present presenter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		shopping:  shopping,
		follows:   follows,
		tokens:    tokens,
		limiter:   limiter,
		present:   present,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuth(h.tokens)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", required, middleware.RateLimit(h.limiter), h.CreateRecipe)
		recipes.GET("/favorites", required, h.listSet(h.favorites))
		recipes.GET("/shopping_cart", required, h.listSet(h.cart))
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.addToSet(h.favorites))
		recipes.DELETE("/:id/favorite", required, h.removeFromSet(h.favorites))
		recipes.POST("/:id/shopping_cart", required, h.addToSet(h.cart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeFromSet(h.cart))
	}
}

// ListRecipes supports author, repeated tags (slugs), is_favorited,
// is_in_shopping_cart, limit and offset.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := pageParams(c)
	if !ok {
		return
	}
	filter := service.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Limit:            page.Limit,
		Offset:           page.Offset,
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badRequest(c, "invalid_author", "author must be a user id")
			return
		}
		author := uint(id)
		filter.AuthorID = &author
	}

	viewer := middleware.CurrentUserID(c)
	views, total, err := h.recipes.ListRecipes(c.Request.Context(), viewer, filter)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := h.presentRecipes(c, viewer, views)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Page[types.Recipe]{Count: total, Results: out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewer := middleware.CurrentUserID(c)
	view, err := h.recipes.GetRecipe(c.Request.Context(), viewer, id)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, viewer, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	in, err := bindRecipe(c)
	if err != nil {
		fail(c, err)
		return
	}
	viewer := middleware.CurrentUserID(c)
	view, err := h.recipes.CreateRecipe(c.Request.Context(), viewer, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, viewer, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, err := bindRecipe(c)
	if err != nil {
		fail(c, err)
		return
	}
	viewer := middleware.CurrentUserID(c)
	view, err := h.recipes.UpdateRecipe(c.Request.Context(), viewer, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, viewer, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// addToSet answers 201 when the edge was created and 200 when it already existed.
func (h *RecipeHandler) addToSet(set service.IRecipeSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		recipe, created, err := set.Add(c.Request.Context(), middleware.CurrentUserID(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, h.present.shortRecipe(*recipe))
	}
}

func (h *RecipeHandler) removeFromSet(set service.IRecipeSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := set.Remove(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) listSet(set service.IRecipeSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		recipes, err := set.List(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, h.present.shortRecipes(recipes))
	}
}

// DownloadShoppingCart sends the aggregated cart as a plain text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	list, err := h.shopping.Build(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := list.WriteTo(c.Writer); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("failed to write shopping list")
	}
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, viewer uint, view *service.RecipeView) {
	out, err := h.presentRecipes(c, viewer, []service.RecipeView{*view})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, out[0])
}

func (h *RecipeHandler) presentRecipes(c *gin.Context, viewer uint, views []service.RecipeView) ([]types.Recipe, error) {
	authorIDs := make([]uint, len(views))
	for i, v := range views {
		authorIDs[i] = v.AuthorID
	}
	subscribed, err := h.follows.Subscribed(c.Request.Context(), viewer, authorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]types.Recipe, len(views))
	for i, v := range views {
		out[i] = h.present.recipe(v, subscribed[v.AuthorID])
	}
	return out, nil
}

// bindRecipe accepts either a JSON body with a data URI image or a multipart
// form with an image file.
func bindRecipe(c *gin.Context) (service.RecipeInput, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		return bindRecipeForm(c)
	}

	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.RecipeInput{}, &service.ValidationError{Field: "body", Kind: err}
	}
	in := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        req.Tags,
		Ingredients: ingredientAmounts(req.Ingredients),
	}
	if req.Image != nil {
		img, err := media.ParseDataURI(*req.Image)
		if err != nil {
			return in, err
		}
		in.Image = img
	}
	return in, nil
}

func bindRecipeForm(c *gin.Context) (service.RecipeInput, error) {
	var in service.RecipeInput
	if _, err := c.MultipartForm(); err != nil {
		return in, &service.ValidationError{Field: "body", Kind: errBadForm}
	}
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("text"); ok {
		in.Text = &v
	}
	if v, ok := c.GetPostForm("cooking_time"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return in, &service.ValidationError{Field: "cooking_time", Kind: service.ErrInvalidCookingTime, Values: []string{v}}
		}
		in.CookingTime = &n
	}
	if raw, ok := c.GetPostFormArray("tags"); ok {
		in.Tags = make([]uint, 0, len(raw))
		for _, v := range raw {
			id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
			if err != nil {
				return in, &service.ValidationError{Field: "tags", Kind: errBadForm, Values: []string{v}}
			}
			in.Tags = append(in.Tags, uint(id))
		}
	}
	if v, ok := c.GetPostForm("ingredients"); ok {
		var lines []types.IngredientAmount
		if err := json.Unmarshal([]byte(v), &lines); err != nil {
			return in, &service.ValidationError{Field: "ingredients", Kind: errBadForm}
		}
		in.Ingredients = ingredientAmounts(lines)
		if in.Ingredients == nil {
			in.Ingredients = []service.IngredientAmount{}
		}
	}

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return in, &service.ValidationError{Field: "image", Kind: errBadForm}
	default:
		if file.Size > maxImageBytes {
			return in, &media.DecodeError{Reason: fmt.Sprintf("image larger than %d bytes", maxImageBytes)}
		}
		f, err := file.Open()
		if err != nil {
			return in, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		if err != nil {
			return in, err
		}
		in.Image = media.RawImage{Content: data, MimeType: file.Header.Get("Content-Type")}
	}
	return in, nil
}

func ingredientAmounts(lines []types.IngredientAmount) []service.IngredientAmount {
	if lines == nil {
		return nil
	}
	out := make([]service.IngredientAmount, len(lines))
	for i, line := range lines {
		out[i] = service.IngredientAmount{IngredientID: line.ID, Amount: line.Amount}
	}
	return out
}
