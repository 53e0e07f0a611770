package types

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
)

// RegisterRequest represents the request body for registering a username
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
}

// AuthResponse is returned after registration
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	PrepTime     int    `json:"prep_time" binding:"min=0"`
	Servings     int    `json:"servings" binding:"min=0"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
}

// ToModel builds a recipe owned by authorID from the request.
func (r *CreateRecipeRequest) ToModel(authorID uuid.UUID) *models.Recipe {
	servings := r.Servings
	if servings == 0 {
		servings = 1
	}
	return &models.Recipe{
		AuthorID:     authorID,
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		PrepTime:     r.PrepTime,
		Servings:     servings,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
	}
}

// ReviewRequest represents the request body for rating a recipe
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewResponse wraps a saved review
type ReviewResponse struct {
	Review  *models.Review `json:"review"`
	Created bool           `json:"created"`
}

// ToggleResponse reports the state after a save or follow toggle
type ToggleResponse struct {
	Active bool `json:"active"`
}
