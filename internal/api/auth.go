package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/service"
	"github.com/pageza/recipify/backend/internal/types"
)

// AuthHandler issues identity tokens.
type AuthHandler struct {
	tokens service.ITokenService
	log    *logrus.Logger
}

func NewAuthHandler(tokens service.ITokenService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, log: log}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
	}
}

// Register creates a user for the requested username and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.tokens.Register(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: user})
}
