package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

// FollowedAuthor is one entry of a subscription listing.
type FollowedAuthor struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// FollowingQuery pages a subscription listing. RecipesLimit caps the recipes
// attached to each author; zero or less means no cap.
type FollowingQuery struct {
	Limit        int
	Offset       int
	RecipesLimit int
}

// FollowService manages follower -> author edges.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService creates a new FollowService instance
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow subscribes followerID to authorID and returns the author.
func (s *FollowService) Follow(ctx context.Context, followerID, authorID uint) (*models.User, error) {
	if followerID == authorID {
		return nil, invalid("author", ErrSelfFollow, strconv.FormatUint(uint64(authorID), 10))
	}
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", authorID)
		}
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, &ConflictError{Entity: "subscription", Kind: ErrAlreadyFollowing}
	}

	if err := db.Create(&models.Follow{FollowerID: followerID, AuthorID: authorID}).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &ConflictError{Entity: "subscription", Kind: ErrAlreadyFollowing}
		}
		zerolog.Ctx(ctx).Error().Err(err).Uint("author_id", authorID).Msg("failed to follow")
		return nil, err
	}

	edgeWrites.WithLabelValues("follow", "add").Inc()
	zerolog.Ctx(ctx).Debug().Uint("follower_id", followerID).Uint("author_id", authorID).Msg("subscribed")
	return &author, nil
}

// Unfollow removes the edge. A missing edge is a NotFoundError.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("subscription", authorID)
	}
	edgeWrites.WithLabelValues("follow", "remove").Inc()
	zerolog.Ctx(ctx).Debug().Uint("follower_id", followerID).Uint("author_id", authorID).Msg("unsubscribed")
	return nil
}

// ListFollowing returns one page of followed authors, each with their newest
// recipes and total recipe count, plus the total number of followed authors.
func (s *FollowService) ListFollowing(ctx context.Context, followerID uint, q FollowingQuery) ([]FollowedAuthor, int64, error) {
	db := s.db.WithContext(ctx)

	followed := func() *gorm.DB {
		return db.Model(&models.User{}).
			Joins("JOIN follows f ON f.author_id = users.id").
			Where("f.follower_id = ?", followerID)
	}

	var total int64
	if err := followed().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := followed().Order("f.created_at DESC").Order("f.id DESC")
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	if q.Offset > 0 {
		page = page.Offset(q.Offset)
	}
	var authors []models.User
	if err := page.Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	if len(authors) == 0 {
		return []FollowedAuthor{}, total, nil
	}

	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	var counts []struct {
		AuthorID uint
		N        int64
	}
	if err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS n").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, 0, err
	}
	countByAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.N
	}

	var recipes []models.Recipe
	if err := newestRecipes(db, ids, q.RecipesLimit).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	recipesByAuthor := make(map[uint][]models.Recipe, len(authors))
	for _, r := range recipes {
		recipesByAuthor[r.AuthorID] = append(recipesByAuthor[r.AuthorID], r)
	}

	out := make([]FollowedAuthor, len(authors))
	for i, a := range authors {
		out[i] = FollowedAuthor{
			Author:       a,
			Recipes:      recipesByAuthor[a.ID],
			RecipesCount: countByAuthor[a.ID],
		}
	}
	return out, total, nil
}

// newestRecipes selects the recipes of authorIDs newest first. A positive
// perAuthor keeps only that many per author, ranked in SQL.
func newestRecipes(db *gorm.DB, authorIDs []uint, perAuthor int) *gorm.DB {
	if perAuthor <= 0 {
		return db.Model(&models.Recipe{}).
			Where("author_id IN ?", authorIDs).
			Order("created_at DESC").Order("id DESC")
	}
	ranked := db.Model(&models.Recipe{}).
		Select("recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY created_at DESC, id DESC) AS author_rank").
		Where("author_id IN ?", authorIDs)
	return db.Table("(?) AS recipes", ranked).
		Where("author_rank <= ?", perAuthor).
		Order("created_at DESC").Order("id DESC")
}

// Subscribed reports which of authorIDs the viewer follows.
func (s *FollowService) Subscribed(ctx context.Context, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if viewerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	var hits []uint
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &hits).Error; err != nil {
		return nil, err
	}
	for _, id := range hits {
		out[id] = true
	}
	return out, nil
}
