package memory

import (
	"context"
	"sort"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
)

type CommentStore struct {
	db *Store
}

func (s *CommentStore) Create(ctx context.Context, shoutoutID, userID int64, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.nextCommentID++
	c := &models.Comment{
		ID:         s.db.nextCommentID,
		ShoutOutID: shoutoutID,
		UserID:     userID,
		Content:    content,
		CreatedAt:  s.db.now(),
	}
	s.db.comments[c.ID] = c
	return copyComment(c), nil
}

func (s *CommentStore) GetByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	c, ok := s.db.comments[commentID]
	if !ok {
		return nil, nil
	}
	return copyComment(c), nil
}

func (s *CommentStore) UpdateContent(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.comments[commentID]
	if !ok || c.IsDeleted {
		return nil, nil
	}
	if c.Content == content {
		return copyComment(c), apperr.ErrNoChange
	}
	now := s.db.now()
	c.Content = content
	c.EditedAt = &now
	return copyComment(c), nil
}

func (s *CommentStore) SoftDelete(ctx context.Context, commentID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if c, ok := s.db.comments[commentID]; ok {
		c.IsDeleted = true
	}
	return nil
}

func (s *CommentStore) ListByShoutOut(ctx context.Context, shoutoutID int64) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range s.db.comments {
		if c.ShoutOutID == shoutoutID && !c.IsDeleted {
			out = append(out, *copyComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].TouchedAt(), out[j].TouchedAt()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
