package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/types"
	"gorm.io/gorm"
)

// SimilarityUpdater is notified when a review is created. It never fails the
// caller; problems are logged and counted.
type SimilarityUpdater interface {
	OnReviewCreated(ctx context.Context, reviewerID, recipeID uuid.UUID, rating int)
}

// RecipeDeletionHook removes a recipe's dependent rows inside the deletion
// transaction and clears derived state once it has committed.
type RecipeDeletionHook interface {
	// OnRecipeDeleted returns the recipes whose related lists changed.
	OnRecipeDeleted(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]uuid.UUID, error)
	AfterRecipeDeleted(ctx context.Context, affected []uuid.UUID)
}

// RelatedRecipes answers "recipes similar to this one".
type RelatedRecipes interface {
	RelatedTo(ctx context.Context, recipeID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// EdgeWriter records co-reviews.
type EdgeWriter interface {
	Upsert(ctx context.Context, x, y uuid.UUID) (*models.SimilarityEdge, models.EdgeOutcome, error)
}

// CandidateSource lists a reviewer's recent positively rated recipes.
type CandidateSource interface {
	RecentPositiveRecipeIDs(ctx context.Context, userID uuid.UUID, minRating int, exclude uuid.UUID, limit int) ([]uuid.UUID, error)
}

// RelatedCache is the read-through cache in front of the similarity store.
type RelatedCache interface {
	Get(ctx context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, bool, error)
	Set(ctx context.Context, recipeID uuid.UUID, limit int, related []models.SimilarRecipe) error
	Invalidate(ctx context.Context, recipeIDs ...uuid.UUID) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	Explore(ctx context.Context, page int) ([]models.Recipe, error)
	Search(ctx context.Context, query string, page int) ([]models.Recipe, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error)
}

// IReviewService defines the interface for review operations
type IReviewService interface {
	SubmitReview(ctx context.Context, userID, recipeID uuid.UUID, req *types.ReviewRequest) (*models.Review, bool, error)
	DeleteReview(ctx context.Context, userID, recipeID uuid.UUID) error
	ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Review, error)
}

// ISocialService defines the interface for saves and follows
type ISocialService interface {
	ToggleSave(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	ToggleFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
}

// IFeedService defines the interface for the personalised feed
type IFeedService interface {
	Compose(ctx context.Context, userID uuid.UUID) (*types.Feed, error)
}

// ITokenService defines the interface for identity tokens
type ITokenService interface {
	Register(ctx context.Context, username string) (*models.User, string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
