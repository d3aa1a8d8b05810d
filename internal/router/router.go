package router

import (
	"github.com/gin-gonic/gin"

	"github.com/avelichko/foodgram-backend/internal/api"
	"github.com/avelichko/foodgram-backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	tagHandler *api.TagHandler,
	ingredientHandler *api.IngredientHandler,
	recipeHandler *api.RecipeHandler,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	// The limiter buckets by user id, so it must run after auth; handlers
	// attach it behind AuthMiddleware on their write routes.
	limit := middleware.NoLimit()
	if rateLimiter != nil {
		limit = rateLimiter.Middleware()
	}

	v1 := router.Group("/api")

	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1, limit)
	tagHandler.RegisterRoutes(v1)
	ingredientHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1, limit)

	return router
}
