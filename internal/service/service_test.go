package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/config"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/pageza/recipify/backend/internal/testhelpers"
	"github.com/pageza/recipify/backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires real stores over an in-memory database.
type testEnv struct {
	db      *gorm.DB
	cfg     config.SimilarityConfig
	edges   *store.SimilarityStore
	recipes *store.RecipeStore
	reviews *store.ReviewStore
	social  *store.SocialStore

	updater *SimilarityUpdateService
	query   *SimilarityQueryService
	review  *ReviewService
	recipe  *RecipeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupSQLiteDB(t)
	log := logging.Discard()
	base := store.NewBase(db, log)
	cfg := config.DefaultSimilarityConfig()

	env := &testEnv{
		db:      db,
		cfg:     cfg,
		edges:   store.NewSimilarityStore(base, cfg.StalenessWindow),
		recipes: store.NewRecipeStore(base),
		reviews: store.NewReviewStore(base),
		social:  store.NewSocialStore(base),
	}
	env.updater = NewSimilarityUpdateService(env.edges, env.reviews, nil, cfg, log)
	env.query = NewSimilarityQueryService(env.edges, nil, log)
	env.review = NewReviewService(env.reviews, env.recipes, env.updater, log)
	env.recipe = NewRecipeService(env.recipes, env.query, env.query, log)

	return env
}

func (e *testEnv) user(t *testing.T) uuid.UUID {
	return testhelpers.CreateUser(t, e.db).ID
}

func (e *testEnv) recipesN(t *testing.T, n int) []uuid.UUID {
	author := e.user(t)
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = testhelpers.CreateRecipe(t, e.db, author, "recipe").ID
	}
	return ids
}

func (e *testEnv) rate(t *testing.T, userID, recipeID uuid.UUID, rating int) bool {
	t.Helper()
	_, created, err := e.review.SubmitReview(context.Background(), userID, recipeID, &types.ReviewRequest{Rating: rating})
	require.NoError(t, err)
	// keep created_at strictly increasing between calls
	time.Sleep(2 * time.Millisecond)
	return created
}

func (e *testEnv) score(t *testing.T, x, y uuid.UUID) int {
	t.Helper()
	edge, err := e.edges.Get(context.Background(), x, y)
	if errors.Is(err, models.ErrEdgeNotFound) {
		return 0
	}
	require.NoError(t, err)
	return edge.Score
}

func (e *testEnv) edgeCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.edges.Count(context.Background())
	require.NoError(t, err)
	return n
}
