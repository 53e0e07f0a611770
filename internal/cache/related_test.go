package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsNoop(t *testing.T) {
	c := NewRelatedCache(nil, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, id, 10, []models.SimilarRecipe{{RecipeID: uuid.New(), Score: 1}}))

	got, ok, err := c.Get(ctx, id, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, id))
}

func TestRelatedCacheRoundTripAndInvalidate(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	c := NewRelatedCache(client, time.Minute)
	ctx := context.Background()

	x, y := uuid.New(), uuid.New()
	related := []models.SimilarRecipe{
		{RecipeID: y, Score: 3, UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	_, ok, err := c.Get(ctx, x, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, x, 5, related))
	require.NoError(t, c.Set(ctx, x, 1, related[:1]))

	got, ok, err := c.Get(ctx, x, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, y, got[0].RecipeID)
	assert.Equal(t, 3, got[0].Score)

	ttl, err := client.TTL(ctx, listKey(x, 5)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, x, y))

	_, ok, err = c.Get(ctx, x, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Get(ctx, x, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyListIsCached(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	c := NewRelatedCache(client, time.Minute)
	ctx := context.Background()
	x := uuid.New()

	require.NoError(t, c.Set(ctx, x, 10, []models.SimilarRecipe{}))

	got, ok, err := c.Get(ctx, x, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestSetKeepsOtherListsExpiry(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	c := NewRelatedCache(client, time.Minute)
	ctx := context.Background()
	x := uuid.New()
	related := []models.SimilarRecipe{{RecipeID: uuid.New(), Score: 2}}

	require.NoError(t, c.Set(ctx, x, 5, related))
	require.NoError(t, client.Expire(ctx, listKey(x, 5), 5*time.Second).Err())

	require.NoError(t, c.Set(ctx, x, 10, related))

	short, err := client.TTL(ctx, listKey(x, 5)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, short, 5*time.Second)

	long, err := client.TTL(ctx, listKey(x, 10)).Result()
	require.NoError(t, err)
	assert.Greater(t, long, 5*time.Second)

	require.NoError(t, c.Invalidate(ctx, x))
	n, err := client.Exists(ctx, listKey(x, 5), listKey(x, 10), indexKey(x)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
