package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe is a single authored recipe. The similarity core treats it as an
// opaque identifier plus author reference.
type Recipe struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	AuthorID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author       *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	PrepTime     int       `gorm:"not null;default:0" json:"prep_time"`
	Servings     int       `gorm:"not null;default:1" json:"servings"`
	Ingredients  string    `gorm:"type:text" json:"ingredients"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavedRecipe records that a user bookmarked a recipe.
type SavedRecipe struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_user_recipe,priority:1" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_user_recipe,priority:2;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedRecipe) TableName() string {
	return "saved_recipes"
}
