package services

import (
	"context"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"

	"gorm.io/gorm"
)

// UserService is the user-directory collaborator: it resolves user ids to
// records and display names for response mapping.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		db = config.DB
	}
	return &UserService{db: db}
}

// GetUser returns an active user by id.
func (s *UserService) GetUser(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersMap resolves a batch of user ids in one query.
func (s *UserService) GetUsersMap(ctx context.Context, userIDs []int) (map[int]models.User, error) {
	result := make(map[int]models.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("user_id IN ? AND delete_at IS NULL", userIDs).
		Find(&users).Error; err != nil {
		return nil, err
	}

	for _, u := range users {
		result[u.UserID] = u
	}
	return result, nil
}
