package memory

import (
	"context"
	"sort"
	"time"

	"github.com/lalith-99/shoutout/internal/models"
)

type StatsStore struct {
	db *Store
}

// counters expects the caller to hold the lock.
func (s *Store) counters(u *models.User, since time.Time) models.Counters {
	c := models.Counters{UserID: u.ID, Username: u.Username, Department: u.Department}
	for _, so := range s.shoutouts {
		if so.IsDeleted || !inWindow(so.CreatedAt, since) {
			continue
		}
		if so.GiverID == u.ID {
			c.Sent++
		}
		if so.IsReceiver(u.ID) {
			c.Received++
		}
		if so.IsTagged(u.ID) {
			c.Tagged++
		}
	}
	for _, cm := range s.comments {
		if cm.UserID == u.ID && !cm.IsDeleted && inWindow(cm.CreatedAt, since) {
			c.Comments++
		}
	}
	return c
}

func (s *StatsStore) UserCounters(ctx context.Context, userID int64, since time.Time) (*models.Counters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[userID]
	if !ok {
		return nil, nil
	}
	c := s.db.counters(u, since)
	return &c, nil
}

func (s *StatsStore) AllCounters(ctx context.Context, since time.Time) ([]models.Counters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Counters, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, s.db.counters(u, since))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *StatsStore) ActivityCounts(ctx context.Context, userID int64, monthStart time.Time) (*models.ActivityCounts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var a models.ActivityCounts
	for _, so := range s.db.shoutouts {
		if so.IsDeleted {
			continue
		}
		if so.GiverID == userID {
			a.Sent++
			if !so.CreatedAt.Before(monthStart) {
				a.MonthlySent++
			}
		}
		if so.IsReceiver(userID) {
			a.Received++
		}
		if so.IsTagged(userID) {
			a.Tagged++
		}
	}
	for key := range s.db.reactions {
		so, ok := s.db.shoutouts[key.shoutoutID]
		if !ok || so.IsDeleted {
			continue
		}
		if key.userID == userID {
			a.ReactionsGiven++
		}
		if so.IsReceiver(userID) {
			a.ReactionsReceived++
		}
	}
	for _, cm := range s.db.comments {
		so, ok := s.db.shoutouts[cm.ShoutOutID]
		if cm.IsDeleted || !ok || so.IsDeleted {
			continue
		}
		if cm.UserID == userID {
			a.CommentsGiven++
		}
		if so.IsReceiver(userID) {
			a.CommentsReceived++
		}
	}
	return &a, nil
}

func (s *StatsStore) SendDays(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := make(map[time.Time]struct{})
	days := make([]time.Time, 0)
	for _, so := range s.db.shoutouts {
		if so.IsDeleted || so.GiverID != userID || !inWindow(so.CreatedAt, since) {
			continue
		}
		day := so.CreatedAt.UTC().Truncate(24 * time.Hour)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}

func (s *StatsStore) DepartmentSize(ctx context.Context, department string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	n := 0
	for _, u := range s.db.users {
		if u.Department == department {
			n++
		}
	}
	return n, nil
}
