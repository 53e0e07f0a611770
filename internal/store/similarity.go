package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxUpsertAttempts bounds how often a lost insert race is retried. The second
// attempt always finds the winner's row, so more than a few means something
// other than a race is going on.
const maxUpsertAttempts = 3

// SimilarityStore provides data access for the similarity_edges table.
type SimilarityStore struct {
	Base
	window time.Duration
	now    func() time.Time
}

// NewSimilarityStore creates a SimilarityStore whose edges go stale after window.
func NewSimilarityStore(base Base, window time.Duration) *SimilarityStore {
	return &SimilarityStore{
		Base:   base,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the store that reads the time from now.
func (s *SimilarityStore) WithClock(now func() time.Time) *SimilarityStore {
	c := *s
	c.now = now
	return &c
}

// WithTx returns a copy of the store bound to an open transaction.
func (s *SimilarityStore) WithTx(tx *gorm.DB) *SimilarityStore {
	c := *s
	c.DB = tx
	return &c
}

// Upsert records one co-review of x and y. The pair is normalised, so
// Upsert(x, y) and Upsert(y, x) touch the same row. An absent edge is created
// with score 1, a fresh edge gains one point, and a stale edge is replaced by
// a new one with score 1.
func (s *SimilarityStore) Upsert(ctx context.Context, x, y uuid.UUID) (*models.SimilarityEdge, models.EdgeOutcome, error) {
	if x == y {
		return nil, "", models.ErrSelfSimilarity
	}
	a, b := models.NormalizePair(x, y)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	for attempt := 1; ; attempt++ {
		edge, outcome, err := s.upsertOnce(ctx, a, b)
		if err == nil {
			metrics.SimilarityUpserts.WithLabelValues(string(outcome)).Inc()
			return edge, outcome, nil
		}
		if !IsDuplicateKey(err) || attempt >= maxUpsertAttempts {
			return nil, "", fmt.Errorf("upserting similarity edge: %w", err)
		}

		metrics.SimilarityUpsertConflicts.Inc()
		s.Log.WithFields(logrus.Fields{
			"recipe_a_id": a,
			"recipe_b_id": b,
			"attempt":     attempt,
		}).Debug("Concurrent similarity edge insert, retrying")
	}
}

func (s *SimilarityStore) upsertOnce(ctx context.Context, a, b uuid.UUID) (*models.SimilarityEdge, models.EdgeOutcome, error) {
	now := s.now()

	var (
		edge    models.SimilarityEdge
		outcome models.EdgeOutcome
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite serialises writers and has no row locks
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		err := q.Where("recipe_a_id = ? AND recipe_b_id = ?", a, b).Take(&edge).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			edge = newEdge(a, b, now)
			outcome = models.EdgeCreated
			return tx.Create(&edge).Error

		case err != nil:
			return err

		case edge.Expired(now, s.window):
			if err := tx.Delete(&models.SimilarityEdge{}, "id = ?", edge.ID).Error; err != nil {
				return err
			}
			edge = newEdge(a, b, now)
			outcome = models.EdgeRenewed
			return tx.Create(&edge).Error

		default:
			err := tx.Model(&models.SimilarityEdge{}).
				Where("id = ?", edge.ID).
				Updates(map[string]interface{}{
					"score":      gorm.Expr("score + ?", 1),
					"updated_at": now,
				}).Error
			if err != nil {
				return err
			}
			outcome = models.EdgeIncremented
			return tx.Where("id = ?", edge.ID).Take(&edge).Error
		}
	})
	if err != nil {
		return nil, "", err
	}

	return &edge, outcome, nil
}

func newEdge(a, b uuid.UUID, now time.Time) models.SimilarityEdge {
	return models.SimilarityEdge{
		RecipeAID: a,
		RecipeBID: b,
		Score:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Get returns the edge for the unordered pair {x, y}, stale or not.
func (s *SimilarityStore) Get(ctx context.Context, x, y uuid.UUID) (*models.SimilarityEdge, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	a, b := models.NormalizePair(x, y)

	var edge models.SimilarityEdge
	err := s.DB.WithContext(ctx).Where("recipe_a_id = ? AND recipe_b_id = ?", a, b).Take(&edge).Error
	if err != nil {
		return nil, notFound(err, models.ErrEdgeNotFound)
	}

	return &edge, nil
}

// GetSimilar returns the non-stale neighbours of recipeID ordered by score
// descending, then most recently reinforced, then recipe id. A limit of zero
// or less returns every neighbour.
func (s *SimilarityStore) GetSimilar(ctx context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cutoff := s.now().Add(-s.window)
	if limit <= 0 {
		limit = -1
	}

	// Each orientation is capped separately; the merged top-k is always
	// within the union of both per-side top-k lists.
	var asA, asB []models.SimilarityEdge
	err := s.DB.WithContext(ctx).
		Where("recipe_a_id = ? AND updated_at >= ?", recipeID, cutoff).
		Order("score DESC, updated_at DESC, recipe_b_id ASC").
		Limit(limit).
		Find(&asA).Error
	if err != nil {
		return nil, fmt.Errorf("querying similar recipes: %w", err)
	}
	err = s.DB.WithContext(ctx).
		Where("recipe_b_id = ? AND updated_at >= ?", recipeID, cutoff).
		Order("score DESC, updated_at DESC, recipe_a_id ASC").
		Limit(limit).
		Find(&asB).Error
	if err != nil {
		return nil, fmt.Errorf("querying similar recipes: %w", err)
	}

	return mergeNeighbours(recipeID, limit, asA, asB), nil
}

// mergeNeighbours resolves edges to the other endpoint, drops the recipe
// itself and duplicates, sorts, and truncates to limit.
func mergeNeighbours(recipeID uuid.UUID, limit int, groups ...[]models.SimilarityEdge) []models.SimilarRecipe {
	seen := make(map[uuid.UUID]int)
	out := make([]models.SimilarRecipe, 0)

	for _, edges := range groups {
		for _, e := range edges {
			other := e.Other(recipeID)
			if other == recipeID {
				continue
			}
			if i, ok := seen[other]; ok {
				if e.Score > out[i].Score {
					out[i].Score = e.Score
					out[i].UpdatedAt = e.UpdatedAt
				}
				continue
			}
			seen[other] = len(out)
			out = append(out, models.SimilarRecipe{
				RecipeID:  other,
				Score:     e.Score,
				UpdatedAt: e.UpdatedAt,
			})
		}
	}

	SortSimilar(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortSimilar orders neighbours by score descending, then most recently
// reinforced, then recipe id ascending.
func SortSimilar(rs []models.SimilarRecipe) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Score != rs[j].Score {
			return rs[i].Score > rs[j].Score
		}
		if !rs[i].UpdatedAt.Equal(rs[j].UpdatedAt) {
			return rs[i].UpdatedAt.After(rs[j].UpdatedAt)
		}
		return bytes.Compare(rs[i].RecipeID[:], rs[j].RecipeID[:]) < 0
	})
}

// NeighbourIDs returns every recipe sharing an edge with recipeID, stale
// edges included.
func (s *SimilarityStore) NeighbourIDs(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var edges []models.SimilarityEdge
	err := s.DB.WithContext(ctx).
		Select("recipe_a_id", "recipe_b_id").
		Where("recipe_a_id = ? OR recipe_b_id = ?", recipeID, recipeID).
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("querying neighbours: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(recipeID))
	}
	return ids, nil
}

// DeleteEdgesFor removes every edge touching recipeID.
func (s *SimilarityStore) DeleteEdgesFor(ctx context.Context, recipeID uuid.UUID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := s.DB.WithContext(ctx).
		Where("recipe_a_id = ? OR recipe_b_id = ?", recipeID, recipeID).
		Delete(&models.SimilarityEdge{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting similarity edges: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// PruneStale deletes edges older than the staleness window, batchSize rows at
// a time, and returns how many were removed.
func (s *SimilarityStore) PruneStale(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	cutoff := s.now().Add(-s.window)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := s.pruneBatch(ctx, cutoff, batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
	}
}

func (s *SimilarityStore) pruneBatch(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.SimilarityEdge{}).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("selecting stale edges: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.SimilarityEdge{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting stale edges: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// Count returns the number of stored edges.
func (s *SimilarityStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	err := s.DB.WithContext(ctx).Model(&models.SimilarityEdge{}).Count(&n).Error
	return n, err
}
