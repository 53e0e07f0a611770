package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/service"
)

// Deps holds everything the HTTP handlers need.
type Deps struct {
	Log     *logrus.Logger
	DB      *gorm.DB
	Redis   *redis.Client
	Tokens  service.ITokenService
	Recipes service.IRecipeService
	Reviews service.IReviewService
	Social  service.ISocialService
	Feed    service.IFeedService
	// ReviewLimiter may be nil.
	ReviewLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	health := NewHealthHandler(deps.DB, deps.Redis, deps.Log)
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health.HealthCheck)

	NewAuthHandler(deps.Tokens, deps.Log).RegisterRoutes(v1)
	NewRecipeHandler(deps.Recipes, deps.Tokens, deps.Log).RegisterRoutes(v1)
	NewReviewHandler(deps.Reviews, deps.Tokens, deps.ReviewLimiter, deps.Log).RegisterRoutes(v1)
	NewSocialHandler(deps.Social, deps.Feed, deps.Tokens, deps.Log).RegisterRoutes(v1)
}
