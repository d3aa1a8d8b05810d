package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelichko/foodgram-backend/internal/middleware"
	"github.com/avelichko/foodgram-backend/internal/pagination"
	"github.com/avelichko/foodgram-backend/internal/service"
)

// UserHandler serves user accounts and subscription management
type UserHandler struct {
	authService         *service.AuthService
	subscriptionService *service.SubscriptionService
}

func NewUserHandler(authService *service.AuthService, subscriptionService *service.SubscriptionService) *UserHandler {
	return &UserHandler{
		authService:         authService,
		subscriptionService: subscriptionService,
	}
}

// RegisterRoutes wires the user routes. limit runs after auth on the write
// routes, so it sees the authenticated user id.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	users := router.Group("/users")
	auth := middleware.AuthMiddleware(h.authService)
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, limit, h.SetPassword)
		users.GET("/subscriptions", auth, h.ListSubscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", auth, limit, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, limit, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"email":      user.Email,
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pagination.Parse(c)
	requester := middleware.UserID(c)

	total, users, err := h.authService.ListUsers(c.Request.Context(), requester, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(c, total, page, limit, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.authService.UserView(user, middleware.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Me(c *gin.Context) {
	requester := middleware.UserID(c)

	user, err := h.authService.GetUser(c.Request.Context(), *requester)
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.authService.UserView(user, requester)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.UserID(c)
	if err := h.authService.SetPassword(c.Request.Context(), *requester, req.CurrentPassword, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	followedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	requester := middleware.UserID(c)
	view, err := h.subscriptionService.Subscribe(c.Request.Context(), *requester, followedID, recipesLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	followedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	requester := middleware.UserID(c)
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), *requester, followedID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, limit := pagination.Parse(c)
	requester := middleware.UserID(c)

	total, views, err := h.subscriptionService.List(c.Request.Context(), *requester, recipesLimit(c), page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(c, total, page, limit, views))
}

// recipesLimit caps the recipe cards embedded per followed author; zero
// means no cap.
func recipesLimit(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
