package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipify/backend/internal/api"
	"github.com/pageza/recipify/backend/internal/middleware"
)

// SetupRouter builds the gin engine with the shared middleware stack, the
// metrics endpoint and every API route.
func SetupRouter(corsOrigins []string, deps api.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Log),
		gin.Recovery(),
		middleware.CORS(corsOrigins),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(middleware.ErrorHandler(deps.Log, promhttp.Handler())))

	api.RegisterRoutes(router, deps)

	return router
}
