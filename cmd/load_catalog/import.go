package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	kindIngredients = "ingredients"
	kindTags        = "tags"
)

type catalogImporter interface {
	ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error)
	ImportTags(ctx context.Context, items []models.Tag) (int64, error)
}

// importCatalog decodes a JSON array of kind from r and inserts it. It returns
// the number of rows actually added.
func importCatalog(ctx context.Context, catalog catalogImporter, kind string, r io.Reader) (int64, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	switch kind {
	case kindIngredients:
		var items []models.Ingredient
		if err := dec.Decode(&items); err != nil {
			return 0, fmt.Errorf("decode ingredients: %w", err)
		}
		for i, item := range items {
			if item.Name == "" || item.MeasurementUnit == "" {
				return 0, fmt.Errorf("ingredient #%d: name and measurement_unit are required", i)
			}
		}
		return catalog.ImportIngredients(ctx, items)
	case kindTags:
		var items []models.Tag
		if err := dec.Decode(&items); err != nil {
			return 0, fmt.Errorf("decode tags: %w", err)
		}
		for i, item := range items {
			if item.Name == "" || item.Slug == "" {
				return 0, fmt.Errorf("tag #%d: name and slug are required", i)
			}
		}
		return catalog.ImportTags(ctx, items)
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
}
