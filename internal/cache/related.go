// Package cache holds the Redis-backed read-through cache for related recipes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "similar:"

// RelatedCache caches ranked neighbour lists. Every (recipe, limit) list is
// its own key with its own TTL; a per-recipe set records those keys so one
// DEL drops every cached list of a recipe. A RelatedCache with a nil client
// is a valid no-op cache.
type RelatedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRelatedCache creates a RelatedCache. client may be nil.
func NewRelatedCache(client *redis.Client, ttl time.Duration) *RelatedCache {
	return &RelatedCache{client: client, ttl: ttl}
}

// Enabled reports whether the cache is backed by Redis.
func (c *RelatedCache) Enabled() bool {
	return c != nil && c.client != nil
}

func listKey(recipeID uuid.UUID, limit int) string {
	return keyPrefix + recipeID.String() + ":" + strconv.Itoa(limit)
}

func indexKey(recipeID uuid.UUID) string {
	return keyPrefix + recipeID.String() + ":lists"
}

// Get returns the cached neighbours for (recipeID, limit). ok is false on a miss.
func (c *RelatedCache) Get(ctx context.Context, recipeID uuid.UUID, limit int) ([]models.SimilarRecipe, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, listKey(recipeID, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading related cache: %w", err)
	}

	var out []models.SimilarRecipe
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decoding related cache: %w", err)
	}
	return out, true, nil
}

// Set stores the neighbours for (recipeID, limit). Only that list's TTL is
// set; lists cached for other limits keep their own expiry.
func (c *RelatedCache) Set(ctx context.Context, recipeID uuid.UUID, limit int, related []models.SimilarRecipe) error {
	if !c.Enabled() {
		return nil
	}

	raw, err := json.Marshal(related)
	if err != nil {
		return fmt.Errorf("encoding related cache: %w", err)
	}

	k, idx := listKey(recipeID, limit), indexKey(recipeID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, k, raw, c.ttl)
		pipe.SAdd(ctx, idx, k)
		pipe.Expire(ctx, idx, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing related cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached list for the given recipes.
func (c *RelatedCache) Invalidate(ctx context.Context, recipeIDs ...uuid.UUID) error {
	if !c.Enabled() || len(recipeIDs) == 0 {
		return nil
	}

	members := make([]*redis.StringSliceCmd, len(recipeIDs))
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range recipeIDs {
			members[i] = pipe.SMembers(ctx, indexKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing related cache keys: %w", err)
	}

	keys := make([]string, 0, len(recipeIDs))
	for i, id := range recipeIDs {
		keys = append(keys, indexKey(id))
		keys = append(keys, members[i].Val()...)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidating related cache: %w", err)
	}
	return nil
}
