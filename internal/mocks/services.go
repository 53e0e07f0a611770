package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockTokenService is a mock implementation of the token service
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Register(ctx context.Context, username string) (*models.User, string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockTokenService) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) Explore(ctx context.Context, page int) ([]models.Recipe, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Search(ctx context.Context, query string, page int) ([]models.Recipe, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

// MockReviewService is a mock implementation of the review service
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, userID, recipeID uuid.UUID, req *types.ReviewRequest) (*models.Review, bool, error) {
	args := m.Called(ctx, userID, recipeID, req)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.Review), args.Bool(1), args.Error(2)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockReviewService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Review, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

// MockSocialService is a mock implementation of the social service
type MockSocialService struct {
	mock.Mock
}

func (m *MockSocialService) ToggleSave(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialService) ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

// MockFeedService is a mock implementation of the feed service
type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) Compose(ctx context.Context, userID uuid.UUID) (*types.Feed, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Feed), args.Error(1)
}
