package types

import "github.com/pageza/recipify/backend/internal/models"

// FeedItemKind tags what a feed entry is.
type FeedItemKind string

const (
	FeedRecommendation FeedItemKind = "recommendation"
	FeedReview         FeedItemKind = "review"
	FeedFollowedRecipe FeedItemKind = "followed_recipe"
)

// FeedItem is one card in the feed. Exactly one of Recipe and Review is set.
type FeedItem struct {
	Kind   FeedItemKind   `json:"kind"`
	Recipe *models.Recipe `json:"recipe,omitempty"`
	Review *models.Review `json:"review,omitempty"`
}

// Feed is the shuffled, column-split home feed.
type Feed struct {
	Columns [][]FeedItem `json:"columns"`
	// Degraded is set when recommendations could not be computed.
	Degraded bool `json:"degraded"`
}
