package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SimilarityQueryService serves ranked related-recipe lookups and keeps the
// similarity graph consistent when recipes are deleted.
type SimilarityQueryService struct {
	edges *store.SimilarityStore
	cache RelatedCache
	log   *logrus.Logger
}

// NewSimilarityQueryService creates a SimilarityQueryService. cache may be nil.
func NewSimilarityQueryService(edges *store.SimilarityStore, cache RelatedCache, log *logrus.Logger) *SimilarityQueryService {
	return &SimilarityQueryService{edges: edges, cache: cache, log: log}
}

// RelatedTo returns up to limit recipe ids similar to recipeID, highest score
// first. It never includes recipeID and returns an empty slice when the
// recipe has no edges.
func (s *SimilarityQueryService) RelatedTo(ctx context.Context, recipeID uuid.UUID, limit int) ([]uuid.UUID, error) {
	related, err := s.Related(ctx, recipeID, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(related))
	for i, r := range related {
		ids[i] = r.RecipeID
	}
	return ids, nil
}

// Related is RelatedTo with scores, served through the cache when one is
// configured. Cache failures fall back to the store.
func (s *SimilarityQueryService) Related(ctx context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, error) {
	start := time.Now()
	defer func() {
		metrics.SimilarityQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, recipeID, limit)
		switch {
		case err != nil:
			metrics.SimilarityCacheRequests.WithLabelValues("error").Inc()
			s.log.WithError(err).WithField("recipe_id", recipeID).Warn("Related cache read failed")
		case ok:
			metrics.SimilarityCacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.SimilarityCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	related, err := s.edges.GetSimilar(ctx, recipeID, limit)
	if err != nil {
		return nil, fmt.Errorf("related recipes for %s: %w", recipeID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, recipeID, limit, related); err != nil {
			s.log.WithError(err).WithField("recipe_id", recipeID).Warn("Related cache write failed")
		}
	}

	return related, nil
}

// OnRecipeDeleted removes every edge of recipeID within tx and returns the
// recipe and its former neighbours.
func (s *SimilarityQueryService) OnRecipeDeleted(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]uuid.UUID, error) {
	edges := s.edges.WithTx(tx)

	neighbours, err := edges.NeighbourIDs(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	n, err := edges.DeleteEdgesFor(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"edges":     n,
	}).Debug("Removed similarity edges for deleted recipe")

	return append(neighbours, recipeID), nil
}

// AfterRecipeDeleted drops the cached lists of the affected recipes. It must
// run after the deletion has committed.
func (s *SimilarityQueryService) AfterRecipeDeleted(ctx context.Context, affected []uuid.UUID) {
	if s.cache == nil || len(affected) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, affected...); err != nil {
		s.log.WithError(err).WithField("recipes", len(affected)).Warn("Related cache invalidation failed")
	}
}
