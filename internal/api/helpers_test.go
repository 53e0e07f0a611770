package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipify/backend/internal/logging"
	"github.com/pageza/recipify/backend/internal/mocks"
	"github.com/pageza/recipify/backend/internal/testhelpers"
	"github.com/pageza/recipify/backend/internal/types"
)

const testToken = "test-token"

func init() {
	gin.SetMode(gin.TestMode)
}

// testAPI is a router over mocked services with one authenticated caller.
type testAPI struct {
	router  *gin.Engine
	userID  uuid.UUID
	tokens  *mocks.MockTokenService
	recipes *mocks.MockRecipeService
	reviews *mocks.MockReviewService
	social  *mocks.MockSocialService
	feed    *mocks.MockFeedService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	a := &testAPI{
		router:  gin.New(),
		userID:  uuid.New(),
		tokens:  new(mocks.MockTokenService),
		recipes: new(mocks.MockRecipeService),
		reviews: new(mocks.MockReviewService),
		social:  new(mocks.MockSocialService),
		feed:    new(mocks.MockFeedService),
	}
	a.tokens.On("ValidateToken", testToken).Return(&types.TokenClaims{UserID: a.userID, Username: "tester"}, nil).Maybe()
	a.tokens.On("ValidateToken", mock.Anything).Return(nil, errors.New("token is malformed")).Maybe()

	RegisterRoutes(a.router, Deps{
		Log:     logging.Discard(),
		DB:      testhelpers.SetupSQLiteDB(t),
		Tokens:  a.tokens,
		Recipes: a.recipes,
		Reviews: a.reviews,
		Social:  a.social,
		Feed:    a.feed,
	})
	return a
}

// do sends a request, authenticated when auth is set, and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func assertStatus(t *testing.T, want int, rr *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, rr.Code, rr.Body.String())
}
