package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/models"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrRecipeNotFound),
		errors.Is(err, models.ErrReviewNotFound),
		errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidRating),
		errors.Is(err, models.ErrMissingTitle),
		errors.Is(err, models.ErrSelfFollow),
		errors.Is(err, models.ErrSelfSimilarity):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotAuthor):
		return http.StatusForbidden
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Internal errors are logged and
// hidden from the client.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		fields := logrus.Fields{"path": c.FullPath()}
		if rid, ok := c.Get(middleware.RequestIDKey); ok {
			fields["request_id"] = rid
		}
		log.WithError(err).WithFields(fields).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses the named path parameter as a UUID, answering 400 when it
// is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user, answering 401 when there is none.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}
