package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a recipe. A user has at most one review per recipe.
type Review struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_recipe_user,priority:1" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_recipe_user,priority:2;index:idx_review_user_rating,priority:1" json:"user_id"`
	Rating    int       `gorm:"not null;index:idx_review_user_rating,priority:2;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRating reports whether r is within the accepted star range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
