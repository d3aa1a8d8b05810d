package api

import (
	"github.com/google/uuid"

	"github.com/avelichko/foodgram-backend/internal/service"
)

// IngredientRequest is one (product, amount) entry of a recipe write payload
type IngredientRequest struct {
	ID     uuid.UUID `json:"id"`
	Amount float64   `json:"amount"`
}

// RecipeRequest is a recipe write payload. Field presence is validated by
// the service in a fixed order, so no binding tags here: a half-empty body
// must reach the validator, not die in the binder.
type RecipeRequest struct {
	Ingredients []IngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID         `json:"tags"`
	Name        string              `json:"name"`
	Image       string              `json:"image"`
	Text        string              `json:"text"`
	CookingTime int                 `json:"cooking_time"`
}

func (r *RecipeRequest) toInput() *service.RecipeInput {
	ingredients := make([]service.IngredientInput, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = service.IngredientInput{
			ProductID: ing.ID,
			Amount:    ing.Amount,
		}
	}
	return &service.RecipeInput{
		Name:        r.Name,
		Image:       r.Image,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Ingredients: ingredients,
		TagIDs:      r.Tags,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}
