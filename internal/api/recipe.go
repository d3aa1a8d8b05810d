package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelichko/foodgram-backend/internal/middleware"
	"github.com/avelichko/foodgram-backend/internal/pagination"
	"github.com/avelichko/foodgram-backend/internal/service"
)

// RecipeHandler serves recipe CRUD, favorite/cart toggles and the shopping
// list download.
type RecipeHandler struct {
	authService         *service.AuthService
	recipeService       *service.RecipeService
	shoppingListService *service.ShoppingListService
}

func NewRecipeHandler(authService *service.AuthService, recipeService *service.RecipeService, shoppingListService *service.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		authService:         authService,
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
	}
}

// RegisterRoutes wires the recipe routes. limit runs after auth on the write
// routes, so it sees the authenticated user id.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	auth := middleware.AuthMiddleware(h.authService)
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.POST("", auth, limit, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.PATCH("/:id", auth, limit, h.UpdateRecipe)
		recipes.PUT("/:id", h.PutNotAllowed)
		recipes.DELETE("/:id", auth, limit, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, limit, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, limit, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, limit, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, limit, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := pagination.Parse(c)
	requester := middleware.UserID(c)

	var filter service.RecipeFilter
	if raw := c.Query("author"); raw != "" {
		if author, err := uuid.Parse(raw); err == nil {
			filter.Author = &author
		}
	}
	if slugs := c.QueryArray("tags"); len(slugs) > 0 {
		filter.TagSlugs = slugs
	}
	filter.Favorited = boolQuery(c, "is_favorited")
	filter.InCart = boolQuery(c, "is_in_shopping_cart")

	total, views, err := h.recipeService.ListRecipes(c.Request.Context(), filter, requester, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(c, total, page, limit, views))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	view, err := h.recipeService.GetRecipe(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.UserID(c)
	view, err := h.recipeService.CreateRecipe(c.Request.Context(), *requester, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requester := middleware.UserID(c)
	view, err := h.recipeService.UpdateRecipe(c.Request.Context(), *requester, id, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// PutNotAllowed rejects full updates; partial-update semantics only
func (h *RecipeHandler) PutNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Use PATCH"})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	requester := middleware.UserID(c)
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), *requester, id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addMembership(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeMembership(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.recipeService.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	requester := middleware.UserID(c)

	records, err := h.shoppingListService.BuildReport(c.Request.Context(), *requester)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.shoppingListService.WriteCSV(&buf, records); err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// addMembership and removeMembership share the favorite/cart toggle plumbing;
// the state machines themselves live in the recipe service.
func (h *RecipeHandler) addMembership(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*service.RecipeCard, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "the recipe does not exist"})
		return
	}

	requester := middleware.UserID(c)
	card, err := add(c.Request.Context(), *requester, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

func (h *RecipeHandler) removeMembership(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "the recipe does not exist"})
		return
	}

	requester := middleware.UserID(c)
	if err := remove(c.Request.Context(), *requester, id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value := raw == "1" || raw == "true" || raw == "True"
	return &value
}
