package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/pageza/recipify/backend/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FeedService blends similarity recommendations with review and follow
// activity into a shuffled multi-column feed.
type FeedService struct {
	recipes *store.RecipeStore
	reviews *store.ReviewStore
	social  *store.SocialStore
	related RelatedRecipes
	cfg     config.FeedConfig
	// positive is the rating at which a review seeds recommendations.
	positive int
	shuffle  func(n int, swap func(i, j int))
	log      *logrus.Logger
}

// NewFeedService creates a new FeedService instance
func NewFeedService(recipes *store.RecipeStore, reviews *store.ReviewStore, social *store.SocialStore, related RelatedRecipes, cfg config.FeedConfig, positiveThreshold int, log *logrus.Logger) *FeedService {
	return &FeedService{
		recipes:  recipes,
		reviews:  reviews,
		social:   social,
		related:  related,
		cfg:      cfg,
		positive: positiveThreshold,
		shuffle:  rand.Shuffle,
		log:      log,
	}
}

// Compose builds the feed for userID. The three sources are fetched in
// parallel. If a similarity lookup fails the feed is still returned, without
// recommendations and marked degraded.
func (s *FeedService) Compose(ctx context.Context, userID uuid.UUID) (*types.Feed, error) {
	var (
		recommended []models.Recipe
		degraded    bool
		reviews     []models.Review
		followed    []models.Recipe
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, ok, err := s.recommendations(gctx, userID)
		if err != nil {
			return err
		}
		recommended, degraded = recs, !ok
		return nil
	})

	g.Go(func() error {
		var err error
		reviews, err = s.reviews.OthersOnReviewedRecipes(gctx, userID, s.cfg.ReviewLimit)
		return err
	})

	g.Go(func() error {
		authors, err := s.social.FolloweeIDs(gctx, userID)
		if err != nil {
			return err
		}
		followed, err = s.recipes.ByAuthors(gctx, authors, s.cfg.FollowedLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("composing feed: %w", err)
	}

	if degraded {
		metrics.FeedDegraded.Inc()
	}

	items := mergeFeed(recommended, reviews, followed)
	s.shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	return &types.Feed{
		Columns:  splitColumns(items, s.cfg.Columns),
		Degraded: degraded,
	}, nil
}

// recommendations expands a sample of the user's saved and liked recipes
// into their related recipes. ok is false when a similarity lookup failed;
// the result is then empty.
func (s *FeedService) recommendations(ctx context.Context, userID uuid.UUID) ([]models.Recipe, bool, error) {
	saved, err := s.social.SampleSavedRecipeIDs(ctx, userID, s.cfg.SeedSample)
	if err != nil {
		return nil, false, err
	}
	liked, err := s.reviews.SamplePositiveRecipeIDs(ctx, userID, s.positive, s.cfg.SeedSample)
	if err != nil {
		return nil, false, err
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, seed := range append(saved, liked...) {
		related, err := s.related.RelatedTo(ctx, seed, s.cfg.RelatedPerSeed)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"seed_id": seed,
			}).Warn("Similarity lookup failed; feed served without recommendations")
			return []models.Recipe{}, false, nil
		}
		for _, id := range related {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	recipes, err := s.recipes.ListByIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	return recipes, true, nil
}

// mergeFeed turns the three sources into feed items, keeping the first
// occurrence of every recipe and review.
func mergeFeed(recommended []models.Recipe, reviews []models.Review, followed []models.Recipe) []types.FeedItem {
	items := make([]types.FeedItem, 0, len(recommended)+len(reviews)+len(followed))
	seenRecipe := make(map[uuid.UUID]bool)
	seenReview := make(map[uuid.UUID]bool)

	addRecipes := func(kind types.FeedItemKind, recipes []models.Recipe) {
		for i := range recipes {
			r := &recipes[i]
			if seenRecipe[r.ID] {
				continue
			}
			seenRecipe[r.ID] = true
			items = append(items, types.FeedItem{Kind: kind, Recipe: r})
		}
	}

	addRecipes(types.FeedRecommendation, recommended)
	for i := range reviews {
		r := &reviews[i]
		if seenReview[r.ID] {
			continue
		}
		seenReview[r.ID] = true
		items = append(items, types.FeedItem{Kind: types.FeedReview, Review: r})
	}
	addRecipes(types.FeedFollowedRecipe, followed)

	return items
}

// splitColumns deals items round-robin into n columns whose lengths differ
// by at most one.
func splitColumns(items []types.FeedItem, n int) [][]types.FeedItem {
	if n < 1 {
		n = 1
	}
	cols := make([][]types.FeedItem, n)
	for i := range cols {
		cols[i] = make([]types.FeedItem, 0, len(items)/n+1)
	}
	for i, item := range items {
		cols[i%n] = append(cols[i%n], item)
	}
	return cols
}
