package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/pageza/recipify/backend/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ExplorePageSize = 100
	SearchPageSize  = 15
	// MaxSimilarLimit caps the similar-recipes endpoint.
	MaxSimilarLimit = 50
)

// RecipeService handles recipe operations
type RecipeService struct {
	recipes  *store.RecipeStore
	related  RelatedRecipes
	onDelete RecipeDeletionHook
	log      *logrus.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(recipes *store.RecipeStore, related RelatedRecipes, onDelete RecipeDeletionHook, log *logrus.Logger) *RecipeService {
	return &RecipeService{
		recipes:  recipes,
		related:  related,
		onDelete: onDelete,
		log:      log,
	}
}

// CreateRecipe creates a new recipe authored by authorID
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	recipe := req.ToModel(authorID)
	if recipe.Title == "" {
		return nil, models.ErrMissingTitle
	}

	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": authorID,
	}).Info("Recipe created")

	return s.recipes.Get(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return s.recipes.Get(ctx, id)
}

// DeleteRecipe deletes a recipe owned by userID. Its similarity edges,
// reviews and saves are removed in the same transaction.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return models.ErrNotAuthor
	}

	var (
		hook     func(tx *gorm.DB) error
		affected []uuid.UUID
	)
	if s.onDelete != nil {
		hook = func(tx *gorm.DB) error {
			ids, err := s.onDelete.OnRecipeDeleted(ctx, tx, id)
			affected = ids
			return err
		}
	}
	if err := s.recipes.Delete(ctx, id, hook); err != nil {
		return err
	}
	// only after commit, or a concurrent read could re-cache the old edges
	if s.onDelete != nil {
		s.onDelete.AfterRecipeDeleted(ctx, affected)
	}

	s.log.WithField("recipe_id", id).Info("Recipe deleted")
	return nil
}

// Explore lists recipes newest first
func (s *RecipeService) Explore(ctx context.Context, page int) ([]models.Recipe, error) {
	return s.recipes.Explore(ctx, page, ExplorePageSize)
}

// Search finds recipes whose title or author matches the phrase or any of its words
func (s *RecipeService) Search(ctx context.Context, query string, page int) ([]models.Recipe, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Recipe{}, nil
	}
	return s.recipes.Search(ctx, query, page, SearchPageSize)
}

// Similar returns the recipes most similar to id, best first
func (s *RecipeService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error) {
	if _, err := s.recipes.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	ids, err := s.related.RelatedTo(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return s.recipes.ListByIDs(ctx, ids)
}
