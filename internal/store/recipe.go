package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeStore provides data access for the recipes table.
type RecipeStore struct {
	Base
}

// NewRecipeStore creates a RecipeStore.
func NewRecipeStore(base Base) *RecipeStore {
	return &RecipeStore{Base: base}
}

// Create inserts a recipe.
func (s *RecipeStore) Create(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.DB.WithContext(ctx).Create(recipe).Error; err != nil {
		return fmt.Errorf("creating recipe: %w", err)
	}
	return nil
}

// Get returns a recipe with its author.
func (s *RecipeStore) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).Preload("Author").Take(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err, models.ErrRecipeNotFound)
	}
	return &recipe, nil
}

// ListByIDs returns the recipes with the given ids in the order of ids.
// Unknown ids are skipped.
func (s *RecipeStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var found []models.Recipe
	if err := s.DB.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	byID := make(map[uuid.UUID]models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	out := make([]models.Recipe, 0, len(found))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Explore returns one page of recipes, newest first.
func (s *RecipeStore) Explore(ctx context.Context, page, perPage int) ([]models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	offset, limit := pageBounds(page, perPage)

	var recipes []models.Recipe
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

// Search matches the whole phrase or any single word, case-insensitively,
// against recipe titles and author usernames. Results are newest first.
func (s *RecipeStore) Search(ctx context.Context, query string, page, perPage int) ([]models.Recipe, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return []models.Recipe{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cond := s.DB.WithContext(ctx)
	for i, term := range terms {
		like := "%" + term + "%"
		if i == 0 {
			cond = cond.Where("LOWER(recipes.title) LIKE ? OR LOWER(users.username) LIKE ?", like, like)
		} else {
			cond = cond.Or("LOWER(recipes.title) LIKE ? OR LOWER(users.username) LIKE ?", like, like)
		}
	}

	offset, limit := pageBounds(page, perPage)

	var recipes []models.Recipe
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = recipes.author_id").
		Where(cond).
		Order("recipes.created_at DESC, recipes.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	return recipes, nil
}

// searchTerms returns the lowercased phrase followed by its distinct words.
func searchTerms(query string) []string {
	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase == "" {
		return nil
	}

	terms := []string{phrase}
	seen := map[string]bool{phrase: true}
	for _, w := range strings.Fields(phrase) {
		if !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}
	return terms
}

// ByAuthors returns the newest recipes written by any of authorIDs.
func (s *RecipeStore) ByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]models.Recipe, error) {
	if len(authorIDs) == 0 {
		return []models.Recipe{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var recipes []models.Recipe
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("listing recipes by authors: %w", err)
	}
	return recipes, nil
}

// Delete removes a recipe together with its reviews and saves in one
// transaction. beforeDelete runs first inside the same transaction so dependent
// rows owned by other stores go with it.
func (s *RecipeStore) Delete(ctx context.Context, id uuid.UUID, beforeDelete func(tx *gorm.DB) error) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if beforeDelete != nil {
			if err := beforeDelete(tx); err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("deleting reviews: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.SavedRecipe{}).Error; err != nil {
			return fmt.Errorf("deleting saves: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&models.Recipe{})
		if res.Error != nil {
			return fmt.Errorf("deleting recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrRecipeNotFound
		}
		return nil
	})
}
