package auth

import (
	"errors"
	"time"

	"bloom/models"

	"gorm.io/gorm"
)

// GormSessionStore resolves session tokens against the user_sessions table.
type GormSessionStore struct {
	DB *gorm.DB
}

func (s *GormSessionStore) GetSession(token string) (*Identity, error) {
	var session models.UserSession
	if err := s.DB.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session.ExpiresAt != nil && session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}

	var user models.User
	if err := s.DB.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &Identity{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}
