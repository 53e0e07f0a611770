package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/service"
	"github.com/pageza/recipify/backend/internal/types"
)

type ReviewHandler struct {
	reviews service.IReviewService
	auth    middleware.TokenValidator
	limiter *middleware.RateLimiter
	log     *logrus.Logger
}

// NewReviewHandler creates a ReviewHandler. limiter may be nil.
func NewReviewHandler(reviews service.IReviewService, auth middleware.TokenValidator, limiter *middleware.RateLimiter, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, auth: auth, limiter: limiter, log: log}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/recipes/:id/reviews")
	{
		reviews.GET("", h.ListReviews)

		submit := []gin.HandlerFunc{middleware.AuthMiddleware(h.auth)}
		if h.limiter != nil {
			submit = append(submit, h.limiter.RateLimitMiddleware())
		}
		reviews.POST("", append(submit, h.SubmitReview)...)
		reviews.DELETE("", middleware.AuthMiddleware(h.auth), h.DeleteReview)
	}
}

// SubmitReview creates or updates the caller's review. 201 means a new review
// was written, 200 that an existing one was updated.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, created, err := h.reviews.SubmitReview(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, types.ReviewResponse{Review: review, Created: created})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
