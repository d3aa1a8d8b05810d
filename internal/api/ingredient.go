package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// IngredientHandler serves the product catalog, read-only and unpaginated.
// The route keeps the /ingredients name the frontend expects even though
// the rows are catalog products.
type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListProducts)
		ingredients.GET("/:id", h.GetProduct)
	}
}

// likeEscaper neutralizes LIKE metacharacters so a search term containing
// % or _ matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (h *IngredientHandler) ListProducts(c *gin.Context) {
	query := h.db.Order("name")

	if name := c.Query("name"); name != "" {
		pattern := likeEscaper.Replace(strings.ToLower(name)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ingredients"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *IngredientHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}
