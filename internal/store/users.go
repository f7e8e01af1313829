package store

import (
	"context"

	"quill/internal/models"
)

// GetUser loads the user behind a verified token.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &u, nil
}
