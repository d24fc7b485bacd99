package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves the read-only tag and ingredient lists.
type CatalogHandler struct {
	catalog service.ICatalogService
	present presenter
}

func NewCatalogHandler(catalog service.ICatalogService, present presenter) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, present: present}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.present.tags(tags))
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.present.tag(*tag))
}

// ListIngredients supports ?name= as a case-insensitive prefix filter.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]types.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		out[i] = h.present.ingredient(ing)
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ing, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.present.ingredient(*ing))
}
