// Package memory is an in-process implementation of every repository
// interface. It mirrors the Postgres stores row for row and is what the
// engine and handler tests run against.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/lalith-99/shoutout/internal/models"
)

type reactionKey struct {
	shoutoutID int64
	userID     int64
}

// Store holds all tables behind one RWMutex. Every write runs entirely under
// the write lock, which gives the same per-key atomicity the Postgres stores
// get from their transactions.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users     map[int64]*models.User
	shoutouts map[int64]*models.ShoutOut
	reactions map[reactionKey]*models.Reaction
	comments  map[int64]*models.Comment
	reports   map[int64]*models.Report

	nextUserID     int64
	nextShoutOutID int64
	nextCommentID  int64
	nextReportID   int64
}

func New() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[int64]*models.User),
		shoutouts: make(map[int64]*models.ShoutOut),
		reactions: make(map[reactionKey]*models.Reaction),
		comments:  make(map[int64]*models.Comment),
		reports:   make(map[int64]*models.Report),
	}
}

// SetClock replaces the timestamp source used for created_at and edited_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserStore { return &UserStore{s} }
func (s *Store) ShoutOuts() *ShoutOutStore { return &ShoutOutStore{s} }
func (s *Store) Reactions() *ReactionStore { return &ReactionStore{s} }
func (s *Store) Comments() *CommentStore { return &CommentStore{s} }
func (s *Store) Stats() *StatsStore { return &StatsStore{s} }
func (s *Store) Reports() *ReportStore { return &ReportStore{s} }

// AddUser seeds a user row.
func (s *Store) AddUser(username, department string, role models.Role) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	u := &models.User{
		ID:         s.nextUserID,
		Username:   username,
		Department: department,
		Role:       role,
		JoinedAt:   s.now(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func copyShoutOut(so *models.ShoutOut) *models.ShoutOut {
	cp := *so
	cp.TaggedUserIDs = append([]int64(nil), so.TaggedUserIDs...)
	if so.ReceiverID != nil {
		id := *so.ReceiverID
		cp.ReceiverID = &id
	}
	if so.EditedAt != nil {
		t := *so.EditedAt
		cp.EditedAt = &t
	}
	if so.ImageRef != nil {
		ref := *so.ImageRef
		cp.ImageRef = &ref
	}
	return &cp
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	if c.EditedAt != nil {
		t := *c.EditedAt
		cp.EditedAt = &t
	}
	return &cp
}

func copyReport(r *models.Report) *models.Report {
	cp := *r
	if r.ResolvedBy != nil {
		id := *r.ResolvedBy
		cp.ResolvedBy = &id
	}
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

// normalizeTags matches the tag table: one row per user, read back sorted.
func normalizeTags(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func inWindow(t, since time.Time) bool {
	return since.IsZero() || !t.Before(since)
}
