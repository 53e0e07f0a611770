package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/testhelpers"
)

func limitedRouter(rl *RateLimiter, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.POST("/reviews", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
		c.Next()
	}, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimiterWithoutRedisAllows(t *testing.T) {
	rl := NewReviewRateLimiter(nil, logging.Discard())
	r := limitedRouter(rl, uuid.New())

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
		require.Equal(t, http.StatusCreated, rr.Code)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test"}, logging.Discard())
	r := limitedRouter(rl, uuid.New())

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
		codes[i] = rr.Code
		if i == 1 {
			assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// other users have their own window
	other := limitedRouter(rl, uuid.New())
	rr := httptest.NewRecorder()
	other.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 1, KeyPrefix: "test"}, logging.Discard())
	require.NoError(t, client.Close())

	allowed, _, _, err := rl.IsAllowed(context.Background(), "someone")
	assert.Error(t, err)
	assert.False(t, allowed)

	rr := httptest.NewRecorder()
	limitedRouter(rl, uuid.New()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRateLimiterRetryAfterUsesClock(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 1, KeyPrefix: "test"}, logging.Discard())
	rl.now = func() time.Time { return time.Date(2026, 5, 4, 10, 15, 0, 0, time.UTC) }
	r := limitedRouter(rl, uuid.New())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reviews", nil))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var body struct {
		RetryAfter int `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 45*60, body.RetryAfter)
	assert.Equal(t, "1777892400", rr.Header().Get("X-RateLimit-Reset"))
}
