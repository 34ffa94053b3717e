package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
)

type ShoutOutStore struct {
	db *Store
}

func (s *ShoutOutStore) Create(ctx context.Context, in *models.ShoutOut) (*models.ShoutOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	so := copyShoutOut(in)
	s.db.nextShoutOutID++
	so.ID = s.db.nextShoutOutID
	so.TaggedUserIDs = normalizeTags(in.TaggedUserIDs)
	so.CreatedAt = s.db.now()
	so.EditedAt = nil
	so.IsDeleted = false
	s.db.shoutouts[so.ID] = so

	return copyShoutOut(so), nil
}

func (s *ShoutOutStore) GetByID(ctx context.Context, shoutoutID int64) (*models.ShoutOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	so, ok := s.db.shoutouts[shoutoutID]
	if !ok {
		return nil, nil
	}
	return copyShoutOut(so), nil
}

func (s *ShoutOutStore) UpdateContent(ctx context.Context, in *models.ShoutOut) (*models.ShoutOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	so, ok := s.db.shoutouts[in.ID]
	if !ok || so.IsDeleted {
		return nil, nil
	}
	now := s.db.now()
	so.Title = in.Title
	so.Message = in.Message
	so.Category = in.Category
	so.Visibility = in.Visibility
	so.ImageRef = nil
	if in.ImageRef != nil {
		ref := *in.ImageRef
		so.ImageRef = &ref
	}
	so.TaggedUserIDs = normalizeTags(in.TaggedUserIDs)
	so.EditedAt = &now

	return copyShoutOut(so), nil
}

func (s *ShoutOutStore) SoftDelete(ctx context.Context, shoutoutID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if so, ok := s.db.shoutouts[shoutoutID]; ok {
		so.IsDeleted = true
	}
	return nil
}

func (s *ShoutOutStore) List(ctx context.Context, filter repository.ShoutOutFilter) ([]models.ShoutOut, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]models.ShoutOut, 0)
	for _, so := range s.db.shoutouts {
		if so.IsDeleted {
			continue
		}
		if filter.Department != "" && so.GiverDepartment != filter.Department && so.ReceiverDepartment != filter.Department {
			continue
		}
		if filter.ReceiverDepartment != "" && so.ReceiverDepartment != filter.ReceiverDepartment {
			continue
		}
		if filter.SenderID != 0 && so.GiverID != filter.SenderID {
			continue
		}
		if filter.ParticipantID != 0 && so.GiverID != filter.ParticipantID && !so.IsReceiver(filter.ParticipantID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(so.Message), search) {
			continue
		}
		if !inWindow(so.CreatedAt, filter.Since) {
			continue
		}
		if filter.Before > 0 && so.ID >= filter.Before {
			continue
		}
		out = append(out, *copyShoutOut(so))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
