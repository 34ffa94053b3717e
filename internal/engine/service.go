// Package engine holds the engagement and ranking rules: who may see a
// shout-out, the reaction ledger, comments, scoring, leaderboards,
// achievements and the moderation gate. Storage is reached only through the
// repository interfaces; the pure rules (IsVisible, Score, the Top*
// builders, the tier arithmetic) have no dependencies at all.
package engine

import (
	"context"
	"time"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/config"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
	"go.uber.org/zap"
)

// Repositories bundles the collaborators the engine consumes.
type Repositories struct {
	Users     repository.UserRepository
	ShoutOuts repository.ShoutOutRepository
	Reactions repository.ReactionRepository
	Comments  repository.CommentRepository
	Stats     repository.StatsRepository
	Reports   repository.ReportRepository
}

// SnapshotCache stores read-only leaderboard snapshots. Implementations
// must treat a miss and a disabled cache the same way: found == false.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Service struct {
	users     repository.UserRepository
	shoutouts repository.ShoutOutRepository
	reactions repository.ReactionRepository
	comments  repository.CommentRepository
	stats     repository.StatsRepository
	reports   repository.ReportRepository

	milestones config.Milestones
	cache      SnapshotCache
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithClock overrides the wall clock used for windows, streaks and the
// monthly boundary.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLeaderboardCache enables leaderboard snapshot caching.
func WithLeaderboardCache(c SnapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(repos Repositories, milestones config.Milestones, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		users:      repos.Users,
		shoutouts:  repos.ShoutOuts,
		reactions:  repos.Reactions,
		comments:   repos.Comments,
		stats:      repos.Stats,
		reports:    repos.Reports,
		milestones: milestones,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) user(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	return u, nil
}

// visibleShoutOut loads a shout-out for a normal (non-moderation) read or
// write: reactions, comments, reports.
//
// Why NotFound for hidden content instead of Forbidden?
//   - Forbidden would confirm that id 42 exists and is private. Missing,
//     hidden and suppressed shout-outs all look the same to the caller, so
//     walking ids reveals nothing.
func (s *Service) visibleShoutOut(ctx context.Context, shoutoutID int64, viewer *models.User) (*models.ShoutOut, error) {
	so, err := s.shoutouts.GetByID(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	if so == nil || !IsVisible(so, viewer) {
		return nil, apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	suppressed, err := s.reports.IsSuppressed(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	if suppressed {
		return nil, apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	return so, nil
}
