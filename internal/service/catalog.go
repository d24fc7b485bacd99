package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogService serves the read-only ingredient and tag reference data.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListTags returns every tag ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag", id)
		}
		return nil, err
	}
	return &tag, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// case-insensitively. An empty prefix lists the whole catalog.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID
func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("ingredient", id)
		}
		return nil, err
	}
	return &ing, nil
}

// IngredientsByIDs resolves a set of ids in one query. Missing ids are absent from the map.
func (s *CatalogService) IngredientsByIDs(ctx context.Context, ids []uint) (map[uint]models.Ingredient, error) {
	out := make(map[uint]models.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// TagsByIDs resolves a set of ids in one query. Missing ids are absent from the map.
func (s *CatalogService) TagsByIDs(ctx context.Context, ids []uint) (map[uint]models.Tag, error) {
	out := make(map[uint]models.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// ImportIngredients bulk-inserts ingredients, skipping ones that already exist.
// It returns how many rows were inserted.
func (s *CatalogService) ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&items, 500)
	return res.RowsAffected, res.Error
}

// ImportTags bulk-inserts tags, skipping ones that already exist.
func (s *CatalogService) ImportTags(ctx context.Context, items []models.Tag) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&items, 500)
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
