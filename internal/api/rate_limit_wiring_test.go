package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/foodgram-backend/internal/middleware"
	"github.com/avelichko/foodgram-backend/internal/service"
	"github.com/avelichko/foodgram-backend/internal/testhelpers"
)

// The limiter slot on write routes runs after the auth middleware, so it can
// bucket by the authenticated user. A read route never passes through it.
func TestWriteLimiterRunsAfterAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db, testhelpers.StubImageStore{})
	shoppingListService := service.NewShoppingListService(db)

	limiterCalls := 0
	sawIdentity := false
	limit := func(c *gin.Context) {
		limiterCalls++
		sawIdentity = middleware.UserID(c) != nil
		c.Next()
	}

	router := gin.New()
	apiGroup := router.Group("/api")
	NewRecipeHandler(authService, recipeService, shoppingListService).RegisterRoutes(apiGroup, limit)

	env := &testEnv{db: db, auth: authService, router: router}
	_, token := env.registerUser(t, "chef", "chef@example.com")
	product := testhelpers.CreateProduct(t, db, "flour", "g")
	tag := testhelpers.CreateTag(t, db, "Breakfast", "breakfast")

	w := env.request(t, http.MethodPost, "/api/recipes", token, recipePayload(product, tag))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, limiterCalls)
	assert.True(t, sawIdentity)

	// reads are not limited
	w = env.request(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, limiterCalls)

	// an unauthenticated write is rejected before the limiter runs
	w = env.request(t, http.MethodPost, "/api/recipes", "", recipePayload(product, tag))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, limiterCalls)
}
