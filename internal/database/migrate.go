package database

import (
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// Migrate brings the schema up to date. The unique indexes on favorites,
// shopping carts and subscriptions are part of the models; conflict errors
// in the API depend on them existing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}
