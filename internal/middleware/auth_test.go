package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	userID uuid.UUID
}

func (v stubValidator) ValidateToken(token string) (*TokenClaims, error) {
	if token != "good-token" {
		return nil, errors.New("invalid token")
	}
	return &TokenClaims{UserID: v.userID}, nil
}

func setupAuthRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", AuthMiddleware(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	router.GET("/public", OptionalAuthMiddleware(validator), func(c *gin.Context) {
		if id := UserID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})
	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := setupAuthRouter(stubValidator{userID: userID})

	w := doRequest(router, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/private", "NotBearer good-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/private", "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/private", "Bearer good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := setupAuthRouter(stubValidator{userID: userID})

	// anonymous requests pass through with no identity
	w := doRequest(router, "/public", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// a present but invalid token is still rejected
	w = doRequest(router, "/public", "Bearer bad-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "/public", "Bearer good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}
