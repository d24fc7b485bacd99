package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.Follow{},
	}
}

// RunMigrations brings the schema up to date with the models.
func RunMigrations(db *gorm.DB) error {
	log.Info().Str("dialect", db.Dialector.Name()).Msg("running auto-migration")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
