package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts a user with a unique username.
func CreateUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "user_" + uuid.NewString()[:8]}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateRecipe inserts a recipe authored by authorID.
func CreateRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, title string) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		AuthorID:     authorID,
		Title:        title,
		Description:  fmt.Sprintf("%s description", title),
		Ingredients:  "salt\npepper",
		Instructions: "mix",
		PrepTime:     10,
		Servings:     2,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// CreateRecipeAt inserts a recipe with a fixed creation time.
func CreateRecipeAt(t *testing.T, db *gorm.DB, authorID uuid.UUID, title string, at time.Time) models.Recipe {
	t.Helper()
	recipe := models.Recipe{AuthorID: authorID, Title: title, CreatedAt: at, UpdatedAt: at}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// CreateReview inserts a review with an explicit creation time so ordering
// by recency is deterministic.
func CreateReview(t *testing.T, db *gorm.DB, userID, recipeID uuid.UUID, rating int, at time.Time) models.Review {
	t.Helper()
	review := models.Review{
		UserID:    userID,
		RecipeID:  recipeID,
		Rating:    rating,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	return review
}

// CreateEdge inserts a similarity edge directly, bypassing the upsert path.
func CreateEdge(t *testing.T, db *gorm.DB, x, y uuid.UUID, score int, updatedAt time.Time) models.SimilarityEdge {
	t.Helper()
	a, b := models.NormalizePair(x, y)
	edge := models.SimilarityEdge{
		RecipeAID: a,
		RecipeBID: b,
		Score:     score,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("failed to create edge: %v", err)
	}
	return edge
}
