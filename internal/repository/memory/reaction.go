package memory

import (
	"context"

	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
)

type ReactionStore struct {
	db *Store
}

// Toggle reads the current kind, applies models.NextReaction and writes the
// result without releasing the lock in between. The counts are taken under
// the same lock, so the caller never sees a total that includes a kind this
// user no longer holds.
func (s *ReactionStore) Toggle(ctx context.Context, shoutoutID, userID int64, kind models.ReactionKind) (*repository.ReactionToggle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := reactionKey{shoutoutID: shoutoutID, userID: userID}
	prev := models.ReactionNone
	if r, ok := s.db.reactions[key]; ok {
		prev = r.Kind
	}

	next := models.NextReaction(prev, kind)
	if next == models.ReactionNone {
		delete(s.db.reactions, key)
	} else {
		s.db.reactions[key] = &models.Reaction{
			ShoutOutID: shoutoutID,
			UserID:     userID,
			Kind:       next,
			CreatedAt:  s.db.now(),
		}
	}

	return &repository.ReactionToggle{
		Previous: prev,
		Current:  next,
		Counts:   s.db.countReactions(shoutoutID),
	}, nil
}

func (s *ReactionStore) Counts(ctx context.Context, shoutoutID int64) (models.ReactionCounts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.countReactions(shoutoutID), nil
}

func (s *ReactionStore) KindOf(ctx context.Context, shoutoutID, userID int64) (models.ReactionKind, error) {
	if err := ctx.Err(); err != nil {
		return models.ReactionNone, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	if r, ok := s.db.reactions[reactionKey{shoutoutID: shoutoutID, userID: userID}]; ok {
		return r.Kind, nil
	}
	return models.ReactionNone, nil
}

// countReactions expects the caller to hold the lock.
func (s *Store) countReactions(shoutoutID int64) models.ReactionCounts {
	counts := models.NewReactionCounts()
	for key, r := range s.reactions {
		if key.shoutoutID == shoutoutID {
			counts[r.Kind]++
		}
	}
	return counts
}
