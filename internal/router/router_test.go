package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipify/backend/internal/api"
	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/mocks"
	"github.com/pageza/recipify/backend/internal/testhelpers"
)

func testRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter([]string{"https://recipify.app"}, api.Deps{
		Log:     logging.Discard(),
		DB:      testhelpers.SetupSQLiteDB(t),
		Tokens:  new(mocks.MockTokenService),
		Recipes: new(mocks.MockRecipeService),
		Reviews: new(mocks.MockReviewService),
		Social:  new(mocks.MockSocialService),
		Feed:    new(mocks.MockFeedService),
	})
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/feed", nil)
	req.Header.Set("Origin", "https://recipify.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://recipify.app", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/feed", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndRequestID(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "recipify_http_request_duration_seconds")
}
