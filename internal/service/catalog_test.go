package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestListIngredientsByPrefix(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "flour", "g")
	testhelpers.CreateIngredient(t, db, "s_weird", "g")

	got, err := catalog.ListIngredients(ctx, "S")
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, ing := range got {
		names[i] = ing.Name
	}
	assert.ElementsMatch(t, []string{"Sugar", "salt", "s_weird"}, names)

	escaped, err := catalog.ListIngredients(ctx, "s_")
	require.NoError(t, err)
	require.Len(t, escaped, 1)
	assert.Equal(t, "s_weird", escaped[0].Name)

	all, err := catalog.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCatalogGetters(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()
	tag := testhelpers.CreateTag(t, db, "breakfast")
	ing := testhelpers.CreateIngredient(t, db, "egg", "pcs")

	gotTag, err := catalog.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", gotTag.Slug)

	gotIng, err := catalog.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, "pcs", gotIng.MeasurementUnit)

	_, err = catalog.GetTag(ctx, 404)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = catalog.GetIngredient(ctx, 404)
	assert.ErrorIs(t, err, service.ErrNotFound)

	tags, err := catalog.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestImportSkipsExisting(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	catalog := service.NewCatalogService(db)
	ctx := context.Background()
	testhelpers.CreateIngredient(t, db, "flour", "g")

	n, err := catalog.ImportIngredients(ctx, []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "kg"},
		{Name: "water", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = catalog.ImportTags(ctx, []models.Tag{{Name: "Lunch", Slug: "lunch", Color: "#E26C2D"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = catalog.ImportTags(ctx, []models.Tag{{Name: "Lunch", Slug: "lunch", Color: "#E26C2D"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}
