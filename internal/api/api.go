package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Auth      service.IAuthService
	Users     service.IUserService
	Catalog   service.ICatalogService
	Recipes   service.IRecipeService
	Favorites service.IRecipeSet
	Cart      service.IRecipeSet
	Shopping  service.IShoppingListService
	Follows   service.IFollowService
	Images    *media.Store
	Limiter   middleware.Limiter
}

// NewServices wires the default service implementations over one database.
func NewServices(db *gorm.DB, authService *service.AuthService, images *media.Store, limiter middleware.Limiter) *Services {
	catalog := service.NewCatalogService(db)
	return &Services{
		Auth:      authService,
		Users:     service.NewUserService(db, images),
		Catalog:   catalog,
		Recipes:   service.NewRecipeService(db, service.NewCompositionValidator(catalog), images),
		Favorites: service.NewFavorites(db),
		Cart:      service.NewShoppingCart(db),
		Shopping:  service.NewShoppingListService(db),
		Follows:   service.NewFollowService(db),
		Images:    images,
		Limiter:   limiter,
	}
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, s *Services) {
	router.GET("/health", HealthCheck(db))

	present := presenter{images: s.Images}
	v := router.Group("/api")
	NewAuthHandler(s.Auth, present).RegisterRoutes(v)
	NewUserHandler(s.Users, s.Follows, s.Recipes, s.Auth, present).RegisterRoutes(v)
	NewCatalogHandler(s.Catalog, present).RegisterRoutes(v)
	NewRecipeHandler(s.Recipes, s.Favorites, s.Cart, s.Shopping, s.Follows, s.Auth, s.Limiter, present).RegisterRoutes(v)
}
