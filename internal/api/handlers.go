package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipify/backend/internal/database"
)

// HealthHandler reports whether the database and the optional cache respond.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

// NewHealthHandler creates a HealthHandler. redisClient may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, log: log}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok"}

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.log.WithError(err).Warn("Database health check failed")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		checks["cache"] = "ok"
		// the cache is optional, so a failure degrades instead of failing
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.log.WithError(err).Warn("Redis health check failed")
			checks["cache"] = "unavailable"
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
