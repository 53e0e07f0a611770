package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSave(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSocialService(env.social, env.recipes)
	ids := env.recipesN(t, 1)
	u := env.user(t)
	ctx := context.Background()

	saved, err := svc.ToggleSave(ctx, u, ids[0])
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = svc.ToggleSave(ctx, u, ids[0])
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = svc.ToggleSave(ctx, u, uuid.New())
	assert.ErrorIs(t, err, models.ErrRecipeNotFound)
}

func TestToggleFollow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSocialService(env.social, env.recipes)
	u, v := env.user(t), env.user(t)
	ctx := context.Background()

	following, err := svc.ToggleFollow(ctx, u, v)
	require.NoError(t, err)
	assert.True(t, following)

	ids, err := env.social.FolloweeIDs(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{v}, ids)

	following, err = svc.ToggleFollow(ctx, u, v)
	require.NoError(t, err)
	assert.False(t, following)

	_, err = svc.ToggleFollow(ctx, u, u)
	assert.ErrorIs(t, err, models.ErrSelfFollow)

	_, err = svc.ToggleFollow(ctx, u, uuid.New())
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
