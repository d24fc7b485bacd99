package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

type fakeCatalog struct {
	ingredients     map[uint]models.Ingredient
	tags            map[uint]models.Tag
	ingredientCalls int
	tagCalls        int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		ingredients: map[uint]models.Ingredient{
			1: {ID: 1, Name: "flour", MeasurementUnit: "g"},
			2: {ID: 2, Name: "sugar", MeasurementUnit: "g"},
			3: {ID: 3, Name: "milk", MeasurementUnit: "ml"},
		},
		tags: map[uint]models.Tag{
			1: {ID: 1, Name: "breakfast", Slug: "breakfast"},
			2: {ID: 2, Name: "dinner", Slug: "dinner"},
		},
	}
}

func (f *fakeCatalog) IngredientsByIDs(_ context.Context, ids []uint) (map[uint]models.Ingredient, error) {
	f.ingredientCalls++
	out := map[uint]models.Ingredient{}
	for _, id := range ids {
		if ing, ok := f.ingredients[id]; ok {
			out[id] = ing
		}
	}
	return out, nil
}

func (f *fakeCatalog) TagsByIDs(_ context.Context, ids []uint) (map[uint]models.Tag, error) {
	f.tagCalls++
	out := map[uint]models.Tag{}
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			out[id] = tag
		}
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func validComposition() service.Composition {
	return service.Composition{
		CookingTime: intPtr(10),
		Tags:        []uint{1, 2},
		Ingredients: []service.IngredientAmount{{IngredientID: 1, Amount: 200}, {IngredientID: 2, Amount: 100}},
	}
}

func TestCompositionValidatorAcceptsValidInput(t *testing.T) {
	catalog := newFakeCatalog()
	v := service.NewCompositionValidator(catalog)

	require.NoError(t, v.Validate(context.Background(), validComposition()))
	assert.Equal(t, 1, catalog.ingredientCalls)
	assert.Equal(t, 1, catalog.tagCalls)
}

func TestCompositionValidatorCookingTimeBoundary(t *testing.T) {
	v := service.NewCompositionValidator(newFakeCatalog())

	c := validComposition()
	c.CookingTime = intPtr(0)
	err := v.Validate(context.Background(), c)
	assert.ErrorIs(t, err, service.ErrInvalidCookingTime)
	assert.ErrorIs(t, err, service.ErrValidation)

	c.CookingTime = intPtr(1)
	assert.NoError(t, v.Validate(context.Background(), c))
}

func TestCompositionValidatorRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *service.Composition)
		kind   error
		field  string
		values []string
	}{
		{
			name:   "empty tags",
			mutate: func(c *service.Composition) { c.Tags = []uint{} },
			kind:   service.ErrEmptyTags,
			field:  "tags",
		},
		{
			name:   "duplicate tag",
			mutate: func(c *service.Composition) { c.Tags = []uint{1, 2, 1} },
			kind:   service.ErrDuplicateTag,
			field:  "tags",
			values: []string{"1"},
		},
		{
			name:   "unknown tag",
			mutate: func(c *service.Composition) { c.Tags = []uint{1, 77} },
			kind:   service.ErrUnknownTag,
			field:  "tags",
			values: []string{"77"},
		},
		{
			name:   "empty ingredients",
			mutate: func(c *service.Composition) { c.Ingredients = []service.IngredientAmount{} },
			kind:   service.ErrEmptyIngredients,
			field:  "ingredients",
		},
		{
			name: "duplicate ingredient is reported by name",
			mutate: func(c *service.Composition) {
				c.Ingredients = []service.IngredientAmount{
					{IngredientID: 1, Amount: 1}, {IngredientID: 3, Amount: 1}, {IngredientID: 1, Amount: 5},
				}
			},
			kind:   service.ErrDuplicateIngredient,
			field:  "ingredients",
			values: []string{"flour"},
		},
		{
			name: "unknown ingredients are all listed",
			mutate: func(c *service.Composition) {
				c.Ingredients = []service.IngredientAmount{
					{IngredientID: 1, Amount: 1}, {IngredientID: 999999, Amount: 1}, {IngredientID: 500, Amount: 1},
				}
			},
			kind:   service.ErrUnknownIngredient,
			field:  "ingredients",
			values: []string{"999999", "500"},
		},
		{
			name: "zero amount",
			mutate: func(c *service.Composition) {
				c.Ingredients = []service.IngredientAmount{{IngredientID: 2, Amount: 0}}
			},
			kind:   service.ErrInvalidAmount,
			field:  "ingredients",
			values: []string{"2: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := service.NewCompositionValidator(newFakeCatalog())
			c := validComposition()
			tt.mutate(&c)

			err := v.Validate(context.Background(), c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, service.ErrValidation)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.values, verr.Values)
		})
	}
}

func TestCompositionValidatorUsesOneBatchLookup(t *testing.T) {
	catalog := newFakeCatalog()
	v := service.NewCompositionValidator(catalog)

	lines := make([]service.IngredientAmount, 0, 50)
	for i := uint(100); i < 150; i++ {
		lines = append(lines, service.IngredientAmount{IngredientID: i, Amount: 1})
	}
	err := v.Validate(context.Background(), service.Composition{Ingredients: lines})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Values, 50)
	assert.Equal(t, 1, catalog.ingredientCalls)
}

func TestCompositionValidatorSkipsMissingParts(t *testing.T) {
	catalog := newFakeCatalog()
	v := service.NewCompositionValidator(catalog)

	require.NoError(t, v.Validate(context.Background(), service.Composition{}))
	assert.Zero(t, catalog.ingredientCalls)
	assert.Zero(t, catalog.tagCalls)
}
