package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

const maxMultipartMemory = 16 << 20

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, db *gorm.DB, services *api.Services) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaBackend == config.MediaLocal {
		router.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	api.RegisterRoutes(router, db, services)
	return router
}
