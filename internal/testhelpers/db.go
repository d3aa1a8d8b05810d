package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avelichko/foodgram-backend/internal/database"
	"github.com/avelichko/foodgram-backend/internal/models"
)

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema applied. Each call gets its own named memory database so parallel
// tests do not share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// StubImageStore satisfies service.ImageStore without touching S3
type StubImageStore struct{}

func (StubImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	return fmt.Sprintf("https://images.test/%s.%s", uuid.New(), ext), nil
}

// PNGDataURI is a minimal base64 image payload accepted by the recipe API
const PNGDataURI = "data:image/png;base64,ZmFrZXBuZ2RhdGE="

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func CreateProduct(t *testing.T, db *gorm.DB, name, unit string) *models.Product {
	t.Helper()
	product := models.Product{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func CreateUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// IngredientFixture is one (product, amount) pair for CreateRecipe
type IngredientFixture struct {
	Product *models.Product
	Amount  float64
}

// CreateRecipe persists a recipe with its ingredient and tag links
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, ingredients []IngredientFixture) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "https://images.test/seed.png",
		Text:        "test recipe",
		CookingTime: 10,
	}
	require.NoError(t, db.Create(&recipe).Error)
	for _, tag := range tags {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	}
	for i, ing := range ingredients {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:  recipe.ID,
			ProductID: ing.Product.ID,
			Amount:    ing.Amount,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}).Error)
	}
	return &recipe
}
