package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// UserView is the public representation of a user. IsSubscribed is computed
// relative to the requesting identity and is always false for anonymous
// requests.
type UserView struct {
	Email        string    `json:"email"`
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// IngredientView is one (product, amount) row of a recipe, flattened with
// its product's name and unit.
type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          float64   `json:"amount"`
}

// RecipeView is the full recipe representation returned by the recipes API.
type RecipeView struct {
	ID               uuid.UUID        `json:"id"`
	Tags             []models.Tag     `json:"tags"`
	Author           UserView         `json:"author"`
	Ingredients      []IngredientView `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// RecipeCard is the short recipe shape embedded in favorite/cart responses
// and subscription listings.
type RecipeCard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func newUserView(db *gorm.DB, user *models.User, requester *uuid.UUID) (UserView, error) {
	view := UserView{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if requester != nil {
		var count int64
		if err := db.Model(&models.Subscription{}).
			Where("follower_id = ? AND followed_id = ?", *requester, user.ID).
			Count(&count).Error; err != nil {
			return UserView{}, err
		}
		view.IsSubscribed = count > 0
	}
	return view, nil
}

func newRecipeCard(recipe *models.Recipe) RecipeCard {
	return RecipeCard{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}
