package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelichko/foodgram-backend/internal/models"
)

// SubscriptionView is one followed author with their embedded recipe cards.
type SubscriptionView struct {
	Email        string       `json:"email"`
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	IsSubscribed bool         `json:"is_subscribed"`
	Recipes      []RecipeCard `json:"recipes"`
	RecipesCount int64        `json:"recipes_count"`
}

// SubscriptionService handles the follower/followed state machine and the
// subscription feed listing.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe follows the target user. Following yourself is rejected
// unconditionally, before any state is looked at.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followedID uuid.UUID, recipesLimit int) (*SubscriptionView, error) {
	if followerID == followedID {
		return nil, &ConflictError{Detail: "you cannot subscribe to yourself"}
	}

	var followed models.User
	if err := s.db.WithContext(ctx).First(&followed, "id = ?", followedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sub := models.Subscription{FollowerID: followerID, FollowedID: followedID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
			DoNothing: true,
		}).
		Create(&sub)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &ConflictError{Detail: "you are already subscribed to this user"}
	}

	return s.buildView(ctx, &followed, recipesLimit)
}

// Unsubscribe unfollows the target user
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followedID uuid.UUID) error {
	var followed models.User
	if err := s.db.WithContext(ctx).First(&followed, "id = ?", followedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ConflictError{Detail: "you cannot delete a subscription you are not subscribed to"}
	}
	return nil
}

// List returns one page of the user's subscriptions with the total count.
// recipesLimit caps the recipe cards embedded per author, not the
// subscription list itself; zero means no cap.
func (s *SubscriptionService) List(ctx context.Context, userID uuid.UUID, recipesLimit, page, limit int) (int64, []*SubscriptionView, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("follower_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var subs []models.Subscription
	if err := db.Where("follower_id = ?", userID).
		Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&subs).Error; err != nil {
		return 0, nil, err
	}

	views := make([]*SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		var followed models.User
		if err := db.First(&followed, "id = ?", sub.FollowedID).Error; err != nil {
			return 0, nil, err
		}
		view, err := s.buildView(ctx, &followed, recipesLimit)
		if err != nil {
			return 0, nil, err
		}
		views = append(views, view)
	}
	return total, views, nil
}

func (s *SubscriptionService) buildView(ctx context.Context, followed *models.User, recipesLimit int) (*SubscriptionView, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", followed.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	query := db.Where("author_id = ?", followed.ID).Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	cards := make([]RecipeCard, len(recipes))
	for i := range recipes {
		cards[i] = newRecipeCard(&recipes[i])
	}

	return &SubscriptionView{
		Email:        followed.Email,
		ID:           followed.ID,
		Username:     followed.Username,
		FirstName:    followed.FirstName,
		LastName:     followed.LastName,
		IsSubscribed: true,
		Recipes:      cards,
		RecipesCount: count,
	}, nil
}
