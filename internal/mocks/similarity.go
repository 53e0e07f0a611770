package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockRelatedCache is a mock implementation of the related-recipe cache
type MockRelatedCache struct {
	mock.Mock
}

func (m *MockRelatedCache) Get(ctx context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, bool, error) {
	args := m.Called(ctx, recipeID, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.SimilarRecipe), args.Bool(1), args.Error(2)
}

func (m *MockRelatedCache) Set(ctx context.Context, recipeID uuid.UUID, limit int, related []models.SimilarRecipe) error {
	args := m.Called(ctx, recipeID, limit, related)
	return args.Error(0)
}

func (m *MockRelatedCache) Invalidate(ctx context.Context, recipeIDs ...uuid.UUID) error {
	args := m.Called(ctx, recipeIDs)
	return args.Error(0)
}

// MockRelatedRecipes is a mock implementation of the related-recipe lookup
type MockRelatedRecipes struct {
	mock.Mock
}

func (m *MockRelatedRecipes) RelatedTo(ctx context.Context, recipeID uuid.UUID, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, recipeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockSimilarityUpdater records review notifications
type MockSimilarityUpdater struct {
	mock.Mock
}

func (m *MockSimilarityUpdater) OnReviewCreated(ctx context.Context, reviewerID, recipeID uuid.UUID, rating int) {
	m.Called(ctx, reviewerID, recipeID, rating)
}
