package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/models"
	"github.com/pageza/recipify/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	s := NewSocialStore(NewBase(db, logging.Discard()))
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "chef"}))
	err := s.CreateUser(ctx, &models.User{Username: "chef"})
	assert.ErrorIs(t, err, models.ErrDuplicateKey)

	_, err = s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestToggleFollow(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	s := NewSocialStore(NewBase(db, logging.Discard()))
	ctx := context.Background()
	a := testhelpers.CreateUser(t, db)
	b := testhelpers.CreateUser(t, db)

	following, err := s.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	ids, err := s.FolloweeIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, ids)

	following, err = s.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	ids, err = s.FolloweeIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleSave(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	s := NewSocialStore(NewBase(db, logging.Discard()))
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID, "r")

	saved, err := s.ToggleSave(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	sample, err := s.SampleSavedRecipeIDs(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recipe.ID}, sample)

	saved, err = s.ToggleSave(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}
