package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePairIsOrderIndependent(t *testing.T) {
	x := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	y := uuid.MustParse("00000000-0000-0000-0000-0000000000bb")

	a1, b1 := NormalizePair(x, y)
	a2, b2 := NormalizePair(y, x)

	assert.Equal(t, x, a1)
	assert.Equal(t, y, b1)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Less(t, a1.String(), b1.String())
}

func TestNormalizePairMatchesStringOrder(t *testing.T) {
	for i := 0; i < 50; i++ {
		x, y := uuid.New(), uuid.New()
		a, b := NormalizePair(x, y)
		assert.LessOrEqual(t, a.String(), b.String())
	}
}

func TestSimilarityEdgeOther(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	e := SimilarityEdge{RecipeAID: a, RecipeBID: b}

	assert.Equal(t, b, e.Other(a))
	assert.Equal(t, a, e.Other(b))
}

func TestSimilarityEdgeExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * 24 * time.Hour

	fresh := SimilarityEdge{UpdatedAt: now.Add(-59 * 24 * time.Hour)}
	edge := SimilarityEdge{UpdatedAt: now.Add(-window)}
	stale := SimilarityEdge{UpdatedAt: now.Add(-61 * 24 * time.Hour)}

	assert.False(t, fresh.Expired(now, window))
	assert.False(t, edge.Expired(now, window))
	assert.True(t, stale.Expired(now, window))
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}
