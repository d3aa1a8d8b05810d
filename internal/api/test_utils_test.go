package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/internal/middleware"
	"github.com/avelichko/foodgram-backend/internal/models"
	"github.com/avelichko/foodgram-backend/internal/service"
	"github.com/avelichko/foodgram-backend/internal/testhelpers"
)

const testPassword = "correct-horse-battery-staple"

type testEnv struct {
	db     *gorm.DB
	auth   *service.AuthService
	router *gin.Engine
}

// setupTestEnv wires every handler onto a fresh engine backed by an isolated
// in-memory database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db, testhelpers.StubImageStore{})
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)

	router := gin.New()
	apiGroup := router.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(apiGroup)
	NewUserHandler(authService, subscriptionService).RegisterRoutes(apiGroup, middleware.NoLimit())
	NewTagHandler(db).RegisterRoutes(apiGroup)
	NewIngredientHandler(db).RegisterRoutes(apiGroup)
	NewRecipeHandler(authService, recipeService, shoppingListService).RegisterRoutes(apiGroup, middleware.NoLimit())

	return &testEnv{db: db, auth: authService, router: router}
}

// registerUser creates an account through the auth service and returns the
// user with a valid bearer token.
func (e *testEnv) registerUser(t *testing.T, username, email string) (*models.User, string) {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, email, "Test", "User", testPassword)
	require.NoError(t, err)
	token, err := e.auth.Login(context.Background(), email, testPassword)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
