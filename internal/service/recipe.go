package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// IngredientInput is one (product, amount) entry of a recipe write payload.
type IngredientInput struct {
	ProductID uuid.UUID
	Amount    float64
}

// RecipeInput is a candidate recipe payload. Image is either a base64 data
// URI (stored on write) or an already-stored absolute URL.
type RecipeInput struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
	Ingredients []IngredientInput
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows the recipe listing. Favorited and InCart are
// interpreted relative to the requesting user.
type RecipeFilter struct {
	Author    *uuid.UUID
	TagSlugs  []string
	Favorited *bool
	InCart    *bool
}

// RecipeService handles recipe authoring, listing and the favorite/cart
// membership state machines.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// validateInput rejects the first violation found, in a fixed order callers
// can depend on: ingredients, then tags, then the scalar fields.
func validateInput(in *RecipeInput) error {
	if len(in.Ingredients) == 0 {
		return &ValidationError{Field: "ingredients", Message: "the recipe cannot be without ingredients"}
	}
	seenProducts := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		if seenProducts[ing.ProductID] {
			return &ValidationError{Field: "ingredients", Message: "the recipe cannot contain the same ingredient twice"}
		}
		seenProducts[ing.ProductID] = true
		if ing.Amount <= 0 {
			return &ValidationError{Field: "ingredients", Message: "the ingredient amount must be greater than zero"}
		}
	}

	if len(in.TagIDs) == 0 {
		return &ValidationError{Field: "tags", Message: "the recipe cannot be without a tag"}
	}
	seenTags := make(map[uuid.UUID]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			return &ValidationError{Field: "tags", Message: "the recipe cannot contain the same tag twice"}
		}
		seenTags[id] = true
	}

	if in.Image == "" {
		return &ValidationError{Field: "image", Message: "the recipe must have a picture"}
	}
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "the recipe must have a title"}
	}
	if in.Text == "" {
		return &ValidationError{Field: "text", Message: "the recipe must have a description"}
	}
	if in.CookingTime < 1 {
		return &ValidationError{Field: "cooking_time", Message: "the cooking time cannot be less than 1 minute"}
	}
	return nil
}

// resolveReferences loads the referenced tags and products, rejecting ids
// that do not exist in the catalog.
func (s *RecipeService) resolveReferences(ctx context.Context, in *RecipeInput) ([]models.Product, []models.Tag, error) {
	productIDs := make([]uuid.UUID, len(in.Ingredients))
	for i, ing := range in.Ingredients {
		productIDs[i] = ing.ProductID
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	if len(products) != len(productIDs) {
		return nil, nil, &ValidationError{Field: "ingredients", Message: "unknown ingredient id"}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
		return nil, nil, err
	}
	if len(tags) != len(in.TagIDs) {
		return nil, nil, &ValidationError{Field: "tags", Message: "unknown tag id"}
	}
	return products, tags, nil
}

// resolveImage stores a data-URI payload and returns the resulting URL.
// Already-stored URLs pass through unchanged on update.
func (s *RecipeService) resolveImage(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:image") {
		return image, nil
	}
	data, ext, err := DecodeImageDataURI(image)
	if err != nil {
		return "", &ValidationError{Field: "image", Message: err.Error()}
	}
	return s.images.Save(ctx, data, ext)
}

// CreateRecipe validates the payload, stores the image and persists the
// recipe together with its ingredient and tag links.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*RecipeView, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, _, err := s.resolveReferences(ctx, in); err != nil {
		return nil, err
	}

	imageURL, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Image:       imageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return createLinks(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID, &authorID)
}

// UpdateRecipe replaces the recipe's fields and both link sets. Link
// replacement is full, not incremental: existing rows are deleted and the
// payload's rows recreated inside one transaction.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, in *RecipeInput) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, _, err := s.resolveReferences(ctx, in); err != nil {
		return nil, err
	}

	imageURL, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		recipe.Name = in.Name
		recipe.Image = imageURL
		recipe.Text = in.Text
		recipe.CookingTime = in.CookingTime
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		return createLinks(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID, &actorID)
}

func createLinks(tx *gorm.DB, recipeID uuid.UUID, in *RecipeInput) error {
	for _, ing := range in.Ingredients {
		row := models.RecipeIngredient{
			RecipeID:  recipeID,
			ProductID: ing.ProductID,
			Amount:    ing.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	for _, tagID := range in.TagIDs {
		row := models.RecipeTag{
			RecipeID: recipeID,
			TagID:    tagID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRecipe removes the recipe and everything hanging off it
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// GetRecipe returns the full recipe view relative to the requester
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID uuid.UUID, requester *uuid.UUID) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildView(ctx, &recipe, requester)
}

// ListRecipes returns one page of recipe views plus the total count of
// recipes matching the filter.
func (s *RecipeService) ListRecipes(ctx context.Context, f RecipeFilter, requester *uuid.UUID, page, limit int) (int64, []*RecipeView, error) {
	var total int64
	if err := s.filteredRecipes(ctx, f, requester).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var recipes []models.Recipe
	if err := s.filteredRecipes(ctx, f, requester).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return 0, nil, err
	}

	views := make([]*RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := s.buildView(ctx, &recipes[i], requester)
		if err != nil {
			return 0, nil, err
		}
		views = append(views, view)
	}
	return total, views, nil
}

// filteredRecipes builds a fresh recipe query narrowed by the filter. Built
// once for the count and once for the page fetch.
func (s *RecipeService) filteredRecipes(ctx context.Context, f RecipeFilter, requester *uuid.UUID) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.Author != nil {
		query = query.Where("author_id = ?", *f.Author)
	}
	if len(f.TagSlugs) > 0 {
		tagged := s.db.Model(&models.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("id IN (?)", tagged)
	}
	query = s.applyMembershipFilter(query, f.Favorited, requester, &models.Favorite{})
	return s.applyMembershipFilter(query, f.InCart, requester, &models.ShoppingCart{})
}

// applyMembershipFilter restricts the listing to recipes that are (or are
// not) in the requester's favorites/cart. For anonymous requesters the flag
// is false on every recipe, so wanted=true matches nothing.
func (s *RecipeService) applyMembershipFilter(query *gorm.DB, wanted *bool, requester *uuid.UUID, model interface{}) *gorm.DB {
	if wanted == nil {
		return query
	}
	if requester == nil {
		if *wanted {
			return query.Where("1 = 0")
		}
		return query
	}
	member := s.db.Model(model).Select("recipe_id").Where("user_id = ?", *requester)
	if *wanted {
		return query.Where("id IN (?)", member)
	}
	return query.Where("id NOT IN (?)", member)
}

func (s *RecipeService) buildView(ctx context.Context, recipe *models.Recipe, requester *uuid.UUID) (*RecipeView, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", recipe.AuthorID).Error; err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := db.Model(&models.Tag{}).
		Joins("JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
		Where("recipe_tags.recipe_id = ?", recipe.ID).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	var rows []models.RecipeIngredient
	if err := db.Where("recipe_id = ?", recipe.ID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	ingredients := make([]IngredientView, 0, len(rows))
	for _, row := range rows {
		var product models.Product
		if err := db.First(&product, "id = ?", row.ProductID).Error; err != nil {
			return nil, err
		}
		ingredients = append(ingredients, IngredientView{
			ID:              product.ID,
			Name:            product.Name,
			MeasurementUnit: product.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	authorView, err := newUserView(db, &author, requester)
	if err != nil {
		return nil, err
	}

	view := &RecipeView{
		ID:          recipe.ID,
		Tags:        tags,
		Author:      authorView,
		Ingredients: ingredients,
		Name:        recipe.Name,
		Image:       recipe.Image,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}
	if requester != nil {
		var count int64
		if err := db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", *requester, recipe.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		view.IsFavorited = count > 0
		count = 0
		if err := db.Model(&models.ShoppingCart{}).Where("user_id = ? AND recipe_id = ?", *requester, recipe.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		view.IsInShoppingCart = count > 0
	}
	return view, nil
}

// AddFavorite puts the recipe in the user's favorites. The insert is
// conditional on the store's unique index; a no-op insert means the recipe
// was already there and is reported as a conflict.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeCard, error) {
	recipe, err := s.findRecipeForMembership(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipe.ID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(&fav)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &ConflictError{Detail: "the recipe has already been added to favorites"}
	}

	card := newRecipeCard(recipe)
	return &card, nil
}

// RemoveFavorite takes the recipe out of the user's favorites
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.findRecipeForMembership(ctx, recipeID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ConflictError{Detail: "you cannot remove a recipe from favorites that has not been added there"}
	}
	return nil
}

// AddToCart puts the recipe in the user's shopping cart
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeCard, error) {
	recipe, err := s.findRecipeForMembership(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	row := models.ShoppingCart{UserID: userID, RecipeID: recipe.ID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &ConflictError{Detail: "the recipe has already been added to the shopping list"}
	}

	card := newRecipeCard(recipe)
	return &card, nil
}

// RemoveFromCart takes the recipe out of the user's shopping cart
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	recipe, err := s.findRecipeForMembership(ctx, recipeID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
		Delete(&models.ShoppingCart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ConflictError{Detail: "you cannot remove something from the shopping list that has not been added there"}
	}
	return nil
}

// findRecipeForMembership resolves the target recipe of a favorite/cart
// toggle. A missing recipe is a validation error, reported before any
// membership state is considered.
func (s *RecipeService) findRecipeForMembership(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "detail", Message: "the recipe does not exist"}
		}
		return nil, err
	}
	return &recipe, nil
}
