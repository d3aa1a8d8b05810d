package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/config"
	"github.com/avelichko/foodgram-backend/internal/api"
	"github.com/avelichko/foodgram-backend/internal/middleware"
	"github.com/avelichko/foodgram-backend/internal/router"
	"github.com/avelichko/foodgram-backend/internal/service"
)

// Server wires the services and handlers together and runs the HTTP server
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server
}

// New creates a new server instance. redisClient may be nil, in which case
// write rate limiting is disabled.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, images)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window: time.Minute,
			Limit:  120,
		})
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, subscriptionService),
		api.NewTagHandler(db),
		api.NewIngredientHandler(db),
		api.NewRecipeHandler(authService, recipeService, shoppingListService),
		rateLimiter,
	)

	return &Server{
		cfg:    cfg,
		engine: engine,
	}
}

// Start runs the HTTP server until it fails or is shut down
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.engine,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
