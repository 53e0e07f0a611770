package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
)

// SocialService handles saved recipes and follows
type SocialService struct {
	social  *store.SocialStore
	recipes *store.RecipeStore
}

// NewSocialService creates a new SocialService instance
func NewSocialService(social *store.SocialStore, recipes *store.RecipeStore) *SocialService {
	return &SocialService{social: social, recipes: recipes}
}

// ToggleSave saves or unsaves a recipe and reports whether it is saved now
func (s *SocialService) ToggleSave(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		return false, err
	}
	return s.social.ToggleSave(ctx, userID, recipeID)
}

// ToggleFollow follows or unfollows a user and reports whether the follower
// follows them now
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	if followerID == followeeID {
		return false, models.ErrSelfFollow
	}
	if _, err := s.social.GetUser(ctx, followeeID); err != nil {
		return false, err
	}
	return s.social.ToggleFollow(ctx, followerID, followeeID)
}
