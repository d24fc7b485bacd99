package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/models"
)

const avatarPrefix = "users/avatars"

// UserService reads accounts and manages avatars.
type UserService struct {
	db     *gorm.DB
	images *media.Store
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, images *media.Store) *UserService {
	return &UserService{db: db, images: images}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

// SetAvatar stores a new avatar and drops the previous one.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, in media.ImageInput) (*models.User, error) {
	if in == nil {
		return nil, invalid("avatar", ErrRequired)
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	old := user.Avatar
	key, err := s.images.Put(ctx, avatarPrefix, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", key).Error; err != nil {
		_ = s.images.Remove(ctx, key)
		return nil, err
	}

	user.Avatar = key
	_ = s.images.Remove(ctx, old)
	zerolog.Ctx(ctx).Debug().Uint("user_id", userID).Msg("avatar updated")
	return user, nil
}

// DeleteAvatar clears the avatar. Clearing a missing avatar is a NotFoundError.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	old := user.Avatar
	if old == "" {
		return notFound("avatar", userID)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return err
	}
	_ = s.images.Remove(ctx, old)
	return nil
}
