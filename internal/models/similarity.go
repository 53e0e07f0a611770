package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// SimilarityEdge is an undirected "similar recipes" relation. Exactly one row
// exists per unordered pair, stored with RecipeAID < RecipeBID.
type SimilarityEdge struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeAID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_similarity_pair,priority:1" json:"recipe_a_id"`
	RecipeBID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_similarity_pair,priority:2;index" json:"recipe_b_id"`
	Score     int       `gorm:"not null;default:1;check:score >= 1" json:"score"`
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the last reinforcement time and drives expiry, so gorm must
	// not touch it on its own.
	UpdatedAt time.Time `gorm:"not null;index;autoUpdateTime:false" json:"updated_at"`
}

func (SimilarityEdge) TableName() string {
	return "similarity_edges"
}

// Other returns the endpoint of the edge that is not id.
func (e SimilarityEdge) Other(id uuid.UUID) uuid.UUID {
	if e.RecipeAID == id {
		return e.RecipeBID
	}
	return e.RecipeAID
}

// Expired reports whether the edge was last reinforced more than window before now.
func (e SimilarityEdge) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(e.UpdatedAt) > window
}

// NormalizePair orders two recipe ids so the lower identifier comes first.
// The byte order of a UUID matches the order of its canonical text form, so
// the result agrees with string comparison in SQL.
func NormalizePair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(x[:], y[:]) > 0 {
		return y, x
	}
	return x, y
}

// SimilarRecipe is one ranked row of a similarity lookup, already resolved to
// the neighbouring recipe.
type SimilarRecipe struct {
	RecipeID  uuid.UUID `json:"recipe_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EdgeOutcome describes what an upsert did to the stored edge.
type EdgeOutcome string

const (
	EdgeCreated     EdgeOutcome = "created"
	EdgeIncremented EdgeOutcome = "incremented"
	// EdgeRenewed means a stale edge was removed and the pair started over at score 1.
	EdgeRenewed EdgeOutcome = "renewed"
)
