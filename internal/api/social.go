package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/service"
	"github.com/pageza/recipify/backend/internal/types"
)

// SocialHandler serves saves, follows and the personalised feed.
type SocialHandler struct {
	social service.ISocialService
	feed   service.IFeedService
	auth   middleware.TokenValidator
	log    *logrus.Logger
}

func NewSocialHandler(social service.ISocialService, feed service.IFeedService, auth middleware.TokenValidator, log *logrus.Logger) *SocialHandler {
	return &SocialHandler{social: social, feed: feed, auth: auth, log: log}
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(h.auth))
	{
		authed.POST("/recipes/:id/save", h.ToggleSave)
		authed.POST("/users/:id/follow", h.ToggleFollow)
		authed.GET("/feed", h.Feed)
	}
}

func (h *SocialHandler) ToggleSave(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	saved, err := h.social.ToggleSave(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleResponse{Active: saved})
}

func (h *SocialHandler) ToggleFollow(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	followeeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	following, err := h.social.ToggleFollow(c.Request.Context(), userID, followeeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleResponse{Active: following})
}

// Feed returns the caller's shuffled three-column feed.
func (h *SocialHandler) Feed(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	feed, err := h.feed.Compose(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
