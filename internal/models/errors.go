package models

import "errors"

// Lookup errors.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrEdgeNotFound   = errors.New("similarity edge not found")
)

// Validation and rule errors.
var (
	ErrSelfSimilarity = errors.New("a recipe cannot be similar to itself")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrSelfFollow     = errors.New("users cannot follow themselves")
	ErrNotAuthor      = errors.New("only the author can modify this recipe")
	ErrMissingTitle   = errors.New("title is required")
)

// ErrDuplicateKey indicates a unique constraint violation.
var ErrDuplicateKey = errors.New("duplicate key")
