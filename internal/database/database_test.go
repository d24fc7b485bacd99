package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "foodgram.db"),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.HealthCheck(context.Background(), db))

	for _, m := range database.Models() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}

	// Running twice is a no-op.
	require.NoError(t, database.RunMigrations(db))
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", database.SQLiteDSN(":memory:"))

	db := testhelpers.NewSQLiteDB(t)
	err := db.Create(&models.RecipeIngredient{RecipeID: 404, IngredientID: 404, Amount: 1}).Error
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	testhelpers.CreateIngredient(t, db, "flour", "g")

	err := db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "g"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	assert.True(t, database.IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.False(t, database.IsUniqueViolation(nil))

	// Same name under another unit is a different ingredient.
	assert.NoError(t, db.Create(&models.Ingredient{Name: "flour", MeasurementUnit: "cup"}).Error)
}

func TestPostgresMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := testhelpers.SetupPostgres(t)
	require.NoError(t, database.HealthCheck(context.Background(), db))

	testhelpers.CreateTag(t, db, "breakfast")
	err := db.Create(&models.Tag{Name: "breakfast", Slug: "breakfast"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}
