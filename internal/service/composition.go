package service

import (
	"context"
	"slices"
	"strconv"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogLookup resolves catalog ids in batches.
type CatalogLookup interface {
	IngredientsByIDs(ctx context.Context, ids []uint) (map[uint]models.Ingredient, error)
	TagsByIDs(ctx context.Context, ids []uint) (map[uint]models.Tag, error)
}

// IngredientAmount is one submitted composition line.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// Composition is the part of a recipe submission the validator checks.
// Nil slices and a nil cooking time mean "not supplied" and are skipped,
// which is what a partial update needs.
type Composition struct {
	CookingTime *int
	Tags        []uint
	Ingredients []IngredientAmount
}

// CompositionValidator checks tag and ingredient submissions before anything is written.
type CompositionValidator struct {
	catalog CatalogLookup
}

// NewCompositionValidator creates a validator backed by the given catalog.
func NewCompositionValidator(catalog CatalogLookup) *CompositionValidator {
	return &CompositionValidator{catalog: catalog}
}

// Validate returns the first violation found, as a *ValidationError, or nil.
// It never writes. Tags and ingredients set to non-nil empty slices are rejected.
func (v *CompositionValidator) Validate(ctx context.Context, c Composition) error {
	if c.CookingTime != nil && *c.CookingTime < 1 {
		return invalid("cooking_time", ErrInvalidCookingTime, strconv.Itoa(*c.CookingTime))
	}
	if c.Tags != nil {
		if err := v.validateTags(ctx, c.Tags); err != nil {
			return err
		}
	}
	if c.Ingredients != nil {
		if err := v.validateIngredients(ctx, c.Ingredients); err != nil {
			return err
		}
	}
	return nil
}

func (v *CompositionValidator) validateTags(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return invalid("tags", ErrEmptyTags)
	}
	if dups := duplicates(ids); len(dups) > 0 {
		return invalid("tags", ErrDuplicateTag, formatIDs(dups)...)
	}
	found, err := v.catalog.TagsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return invalid("tags", ErrUnknownTag, formatIDs(missing)...)
	}
	return nil
}

func (v *CompositionValidator) validateIngredients(ctx context.Context, lines []IngredientAmount) error {
	if len(lines) == 0 {
		return invalid("ingredients", ErrEmptyIngredients)
	}
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if line.Amount < 1 {
			return invalid("ingredients", ErrInvalidAmount,
				strconv.FormatUint(uint64(line.IngredientID), 10)+": "+strconv.Itoa(line.Amount))
		}
		ids = append(ids, line.IngredientID)
	}

	found, err := v.catalog.IngredientsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if dups := duplicates(ids); len(dups) > 0 {
		names := make([]string, 0, len(dups))
		for _, id := range dups {
			if ing, ok := found[id]; ok {
				names = append(names, ing.Name)
			} else {
				names = append(names, strconv.FormatUint(uint64(id), 10))
			}
		}
		return invalid("ingredients", ErrDuplicateIngredient, names...)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return invalid("ingredients", ErrUnknownIngredient, formatIDs(missing)...)
	}
	return nil
}

// duplicates returns each id that occurs more than once, in first-seen order.
func duplicates(ids []uint) []uint {
	seen := make(map[uint]int, len(ids))
	var out []uint
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			out = append(out, id)
		}
	}
	return out
}

func missingIDs[T any](ids []uint, found map[uint]T) []uint {
	var out []uint
	for _, id := range ids {
		if _, ok := found[id]; !ok && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func formatIDs(ids []uint) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out
}
