package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"gorm.io/gorm"
)

// ReviewStore provides data access for the reviews table.
type ReviewStore struct {
	Base
}

// NewReviewStore creates a ReviewStore.
func NewReviewStore(base Base) *ReviewStore {
	return &ReviewStore{Base: base}
}

// Save writes the user's review of a recipe, updating the existing one if
// present. created is true only when a new row was inserted.
func (s *ReviewStore) Save(ctx context.Context, review *models.Review) (created bool, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	for attempt := 1; attempt <= 2; attempt++ {
		created, err = s.saveOnce(ctx, review)
		// A concurrent first review by the same user wins the insert; ours
		// becomes an update.
		if err == nil || !IsDuplicateKey(err) {
			break
		}
	}
	if err != nil {
		return false, fmt.Errorf("saving review: %w", err)
	}
	return created, nil
}

func (s *ReviewStore) saveOnce(ctx context.Context, review *models.Review) (bool, error) {
	created := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Review
		err := tx.Where("recipe_id = ? AND user_id = ?", review.RecipeID, review.UserID).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(review).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&existing).Updates(map[string]interface{}{
			"rating":  review.Rating,
			"comment": review.Comment,
		}).Error
		if err != nil {
			return err
		}
		return tx.Take(review, "id = ?", existing.ID).Error
	})

	return created, err
}

// Get returns the user's review of a recipe.
func (s *ReviewStore) Get(ctx context.Context, userID, recipeID uuid.UUID) (*models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var review models.Review
	err := s.DB.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Take(&review).Error
	if err != nil {
		return nil, notFound(err, models.ErrReviewNotFound)
	}
	return &review, nil
}

// Delete removes the user's review of a recipe.
func (s *ReviewStore) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := s.DB.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Delete(&models.Review{})
	if res.Error != nil {
		return fmt.Errorf("deleting review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrReviewNotFound
	}
	return nil
}

// ListForRecipe returns a recipe's reviews, newest first.
func (s *ReviewStore) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC, id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}

// RecentPositiveRecipeIDs returns recipes the user rated at least minRating,
// most recently reviewed first, excluding exclude. A limit of zero or less
// means no limit.
func (s *ReviewStore) RecentPositiveRecipeIDs(ctx context.Context, userID uuid.UUID, minRating int, exclude uuid.UUID, limit int) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = -1
	}

	q := s.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND rating >= ?", userID, minRating)
	if exclude != uuid.Nil {
		q = q.Where("recipe_id <> ?", exclude)
	}

	var ids []uuid.UUID
	err := q.Order("created_at DESC, id ASC").Limit(limit).Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing positive reviews: %w", err)
	}
	return ids, nil
}

// SamplePositiveRecipeIDs returns up to n random recipes the user rated at
// least minRating.
func (s *ReviewStore) SamplePositiveRecipeIDs(ctx context.Context, userID uuid.UUID, minRating, n int) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND rating >= ?", userID, minRating).
		Order("RANDOM()").
		Limit(n).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("sampling positive reviews: %w", err)
	}
	return ids, nil
}

// OthersOnReviewedRecipes returns the newest reviews written by other users
// on recipes that userID has reviewed.
func (s *ReviewStore) OthersOnReviewedRecipes(ctx context.Context, userID uuid.UUID, limit int) ([]models.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	db := s.DB.WithContext(ctx)
	reviewed := db.Model(&models.Review{}).Select("recipe_id").Where("user_id = ?", userID)

	var reviews []models.Review
	err := db.
		Where("recipe_id IN (?) AND user_id <> ?", reviewed, userID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("listing reviews on reviewed recipes: %w", err)
	}
	return reviews, nil
}
