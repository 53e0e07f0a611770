package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipify/backend/internal/middleware"
	"github.com/pageza/recipify/backend/internal/service"
	"github.com/pageza/recipify/backend/internal/types"
)

const defaultSimilarLimit = 10

type RecipeHandler struct {
	recipes service.IRecipeService
	auth    middleware.TokenValidator
	log     *logrus.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, auth middleware.TokenValidator, log *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, auth: auth, log: log}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.Explore)
		recipes.GET("/search", h.Search)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.Similar)
		recipes.POST("", middleware.AuthMiddleware(h.auth), h.CreateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.DeleteRecipe)
	}
}

func page(c *gin.Context) int {
	p, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func (h *RecipeHandler) Explore(c *gin.Context) {
	recipes, err := h.recipes.Explore(c.Request.Context(), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) Search(c *gin.Context) {
	recipes, err := h.recipes.Search(c.Request.Context(), c.Query("q"), page(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// Similar lists recipes related to :id through co-reviews, best first.
func (h *RecipeHandler) Similar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit := defaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	recipes, err := h.recipes.Similar(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
