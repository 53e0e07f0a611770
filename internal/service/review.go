package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/pageza/recipify/backend/internal/types"
	"github.com/sirupsen/logrus"
)

// ReviewService handles review operations
type ReviewService struct {
	reviews    *store.ReviewStore
	recipes    *store.RecipeStore
	similarity SimilarityUpdater
	log        *logrus.Logger
}

// NewReviewService creates a new ReviewService instance. similarity may be nil.
func NewReviewService(reviews *store.ReviewStore, recipes *store.RecipeStore, similarity SimilarityUpdater, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		recipes:    recipes,
		similarity: similarity,
		log:        log,
	}
}

// SubmitReview creates the user's review of a recipe or updates the existing
// one. Only a newly created review feeds the similarity graph; created
// reports which branch ran.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, recipeID uuid.UUID, req *types.ReviewRequest) (*models.Review, bool, error) {
	if !models.ValidRating(req.Rating) {
		return nil, false, models.ErrInvalidRating
	}
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		return nil, false, err
	}

	review := &models.Review{
		UserID:   userID,
		RecipeID: recipeID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	created, err := s.reviews.Save(ctx, review)
	if err != nil {
		return nil, false, err
	}

	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"recipe_id": recipeID,
		"user_id":   userID,
		"created":   created,
	}).Info("Review saved")

	if created && s.similarity != nil {
		s.similarity.OnReviewCreated(ctx, userID, recipeID, review.Rating)
	}

	return review, created, nil
}

// DeleteReview removes the user's review. Similarity edges are left as they
// are; they only ever grow or expire.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.reviews.Delete(ctx, userID, recipeID)
}

// ListForRecipe returns a recipe's reviews, newest first
func (s *ReviewService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Review, error) {
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		return nil, err
	}
	return s.reviews.ListForRecipe(ctx, recipeID)
}
