package memory

import (
	"context"

	"github.com/lalith-99/shoutout/internal/models"
)

type UserStore struct {
	db *Store
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
