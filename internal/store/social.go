package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"gorm.io/gorm"
)

// SocialStore provides data access for users, follows and saved recipes.
type SocialStore struct {
	Base
}

// NewSocialStore creates a SocialStore.
func NewSocialStore(base Base) *SocialStore {
	return &SocialStore{Base: base}
}

// CreateUser inserts a user. A taken username yields models.ErrDuplicateKey.
func (s *SocialStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if IsDuplicateKey(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *SocialStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := s.DB.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// ToggleFollow follows followeeID if not already followed and unfollows
// otherwise. It reports whether the follower follows afterwards.
func (s *SocialStore) ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	following := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		following = true
		return tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("toggling follow: %w", err)
	}
	return following, nil
}

// FolloweeIDs returns the ids of everyone userID follows.
func (s *SocialStore) FolloweeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing followees: %w", err)
	}
	return ids, nil
}

// ToggleSave saves the recipe for the user if not saved and unsaves it
// otherwise. It reports whether the recipe is saved afterwards.
func (s *SocialStore) ToggleSave(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	saved := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.SavedRecipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&models.SavedRecipe{UserID: userID, RecipeID: recipeID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("toggling save: %w", err)
	}
	return saved, nil
}

// SampleSavedRecipeIDs returns up to n random recipes the user has saved.
func (s *SocialStore) SampleSavedRecipeIDs(ctx context.Context, userID uuid.UUID, n int) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.SavedRecipe{}).
		Where("user_id = ?", userID).
		Order("RANDOM()").
		Limit(n).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("sampling saved recipes: %w", err)
	}
	return ids, nil
}
