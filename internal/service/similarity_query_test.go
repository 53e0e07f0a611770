package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/database"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/metrics"
	"github.com/pageza/recipify/backend/internal/mocks"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/store"
	"github.com/pageza/recipify/backend/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRelatedToRanksAndExcludesSelf(t *testing.T) {
	env := newTestEnv(t)
	ids := env.recipesN(t, 4)
	now := time.Now().UTC()

	testhelpers.CreateEdge(t, env.db, ids[0], ids[1], 2, now.Add(-time.Hour))
	testhelpers.CreateEdge(t, env.db, ids[2], ids[0], 7, now.Add(-time.Hour))
	testhelpers.CreateEdge(t, env.db, ids[1], ids[3], 9, now.Add(-time.Hour))

	got, err := env.query.RelatedTo(context.Background(), ids[0], 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1]}, got)

	got, err = env.query.RelatedTo(context.Background(), ids[0], 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[2]}, got)
}

func TestRelatedToWithoutEdgesIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	got, err := env.query.RelatedTo(context.Background(), uuid.New(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRelatedServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	cached := []models.SimilarRecipe{{RecipeID: uuid.New(), Score: 3}}

	c := new(mocks.MockRelatedCache)
	c.On("Get", mock.Anything, id, 5).Return(cached, true, nil)
	q := NewSimilarityQueryService(env.edges, c, logging.Discard())

	before := testutil.ToFloat64(metrics.SimilarityCacheRequests.WithLabelValues("hit"))
	got, err := q.Related(context.Background(), id, 5)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SimilarityCacheRequests.WithLabelValues("hit")))

	c.AssertExpectations(t)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelatedMissFillsCache(t *testing.T) {
	env := newTestEnv(t)
	ids := env.recipesN(t, 2)
	testhelpers.CreateEdge(t, env.db, ids[0], ids[1], 4, time.Now().UTC().Add(-time.Minute))

	c := new(mocks.MockRelatedCache)
	c.On("Get", mock.Anything, ids[0], 10).Return(nil, false, nil)
	c.On("Set", mock.Anything, ids[0], 10, mock.MatchedBy(func(rs []models.SimilarRecipe) bool {
		return len(rs) == 1 && rs[0].RecipeID == ids[1] && rs[0].Score == 4
	})).Return(nil)
	q := NewSimilarityQueryService(env.edges, c, logging.Discard())

	got, err := q.RelatedTo(context.Background(), ids[0], 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1]}, got)
	c.AssertExpectations(t)
}

func TestRelatedFallsBackWhenCacheFails(t *testing.T) {
	env := newTestEnv(t)
	ids := env.recipesN(t, 2)
	testhelpers.CreateEdge(t, env.db, ids[0], ids[1], 1, time.Now().UTC().Add(-time.Minute))

	c := new(mocks.MockRelatedCache)
	c.On("Get", mock.Anything, ids[0], 3).Return(nil, false, errors.New("connection refused"))
	c.On("Set", mock.Anything, ids[0], 3, mock.Anything).Return(errors.New("connection refused"))
	q := NewSimilarityQueryService(env.edges, c, logging.Discard())

	before := testutil.ToFloat64(metrics.SimilarityCacheRequests.WithLabelValues("error"))
	got, err := q.RelatedTo(context.Background(), ids[0], 3)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1]}, got)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SimilarityCacheRequests.WithLabelValues("error")))
}

func TestRecipeDeletionInvalidatesNeighbours(t *testing.T) {
	env := newTestEnv(t)
	author := env.user(t)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, testhelpers.CreateRecipe(t, env.db, author, "dish").ID)
	}
	now := time.Now().UTC()
	testhelpers.CreateEdge(t, env.db, ids[0], ids[1], 1, now)
	testhelpers.CreateEdge(t, env.db, ids[2], ids[0], 1, now)

	c := new(mocks.MockRelatedCache)
	c.On("Invalidate", mock.Anything, mock.MatchedBy(func(got []uuid.UUID) bool {
		return sameIDs(got, ids)
	})).Return(nil)
	q := NewSimilarityQueryService(env.edges, c, logging.Discard())
	recipes := NewRecipeService(env.recipes, q, q, logging.Discard())

	require.NoError(t, recipes.DeleteRecipe(context.Background(), author, ids[0]))

	assert.Zero(t, env.edgeCount(t))
	c.AssertExpectations(t)
}

// memoryCache is an in-process RelatedCache. onInvalidate runs after the
// entries are dropped.
type memoryCache struct {
	mu           sync.Mutex
	lists        map[uuid.UUID]map[int][]models.SimilarRecipe
	onInvalidate func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{lists: make(map[uuid.UUID]map[int][]models.SimilarRecipe)}
}

func (c *memoryCache) Get(_ context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	related, ok := c.lists[recipeID][limit]
	return related, ok, nil
}

func (c *memoryCache) Set(_ context.Context, recipeID uuid.UUID, limit int, related []models.SimilarRecipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lists[recipeID] == nil {
		c.lists[recipeID] = make(map[int][]models.SimilarRecipe)
	}
	c.lists[recipeID][limit] = related
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, recipeIDs ...uuid.UUID) error {
	c.mu.Lock()
	for _, id := range recipeIDs {
		delete(c.lists, id)
	}
	c.mu.Unlock()

	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	return nil
}

func TestRecipeDeletionNotRecachedByConcurrentRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")
	writer, err := database.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(writer, "", logging.Discard()))
	reader, err := database.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, db := range []*gorm.DB{writer, reader} {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	})

	author := testhelpers.CreateUser(t, writer).ID
	x := testhelpers.CreateRecipe(t, writer, author, "dal").ID
	y := testhelpers.CreateRecipe(t, writer, author, "rice").ID
	testhelpers.CreateEdge(t, writer, x, y, 3, time.Now().UTC())

	log := logging.Discard()
	window := 60 * 24 * time.Hour
	c := newMemoryCache()
	q := NewSimilarityQueryService(store.NewSimilarityStore(store.NewBase(writer, log), window), c, log)
	other := NewSimilarityQueryService(store.NewSimilarityStore(store.NewBase(reader, log), window), c, log)
	recipes := NewRecipeService(store.NewRecipeStore(store.NewBase(writer, log)), q, q, log)

	ctx := context.Background()
	got, err := q.RelatedTo(ctx, y, 10)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{x}, got)

	// another request reads y's neighbours right after the cache is cleared
	c.onInvalidate = func() {
		_, err := other.RelatedTo(ctx, y, 10)
		assert.NoError(t, err)
	}

	require.NoError(t, recipes.DeleteRecipe(ctx, author, x))

	got, err = q.RelatedTo(ctx, y, 10)
	require.NoError(t, err)
	assert.NotContains(t, got, x)
	assert.Empty(t, got)
}

func sameIDs(got, want []uuid.UUID) bool {
	if len(got) != len(want) {
		return false
	}
	set := make(map[uuid.UUID]bool, len(want))
	for _, id := range want {
		set[id] = true
	}
	for _, id := range got {
		if !set[id] {
			return false
		}
	}
	return true
}
