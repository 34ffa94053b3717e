package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultTopN = 10
	MaxTopN     = 100
)

type LeaderboardScope string

const (
	ScopeGlobal       LeaderboardScope = "global"
	ScopeDepartment   LeaderboardScope = "department"
	ScopeDepartments  LeaderboardScope = "departments"
	ScopeContributors LeaderboardScope = "contributors"
	ScopeTagged       LeaderboardScope = "tagged"
)

func (s LeaderboardScope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeDepartment, ScopeDepartments, ScopeContributors, ScopeTagged:
		return true
	}
	return false
}

// LeaderboardEntry is one ranked row. Department rankings leave UserID and
// Username empty. Value is the sort key: score, sent, received or tagged
// depending on the board.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     int64  `json:"user_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Department string `json:"department"`
	Value      int    `json:"value"`
}

// rankUsers orders users by key descending, then id ascending, and keeps
// the first n. Users whose key is zero do not qualify.
func rankUsers(counters []models.Counters, n int, key func(models.Counters) int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(counters))
	for _, c := range counters {
		v := key(c)
		if v <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:     c.UserID,
			Username:   c.Username,
			Department: c.Department,
			Value:      v,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].UserID < entries[j].UserID
	})
	return truncateAndRank(entries, n)
}

func truncateAndRank(entries []LeaderboardEntry, n int) []LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func TopUsersGlobal(counters []models.Counters, n int) []LeaderboardEntry {
	return rankUsers(counters, n, Score)
}

func TopUsersByDepartment(counters []models.Counters, department string, n int) []LeaderboardEntry {
	inDept := make([]models.Counters, 0, len(counters))
	for _, c := range counters {
		if c.Department == department {
			inDept = append(inDept, c)
		}
	}
	return rankUsers(inDept, n, Score)
}

func TopContributorsBySent(counters []models.Counters, n int) []LeaderboardEntry {
	return rankUsers(counters, n, func(c models.Counters) int { return c.Sent })
}

func TopTagged(counters []models.Counters, n int) []LeaderboardEntry {
	return rankUsers(counters, n, func(c models.Counters) int { return c.Tagged })
}

// TopDepartments ranks departments by the total shout-outs their members
// received, ties broken by department name.
func TopDepartments(counters []models.Counters, n int) []LeaderboardEntry {
	totals := make(map[string]int)
	for _, c := range counters {
		if c.Department == "" {
			continue
		}
		totals[c.Department] += c.Received
	}

	entries := make([]LeaderboardEntry, 0, len(totals))
	for dept, v := range totals {
		if v <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{Department: dept, Value: v})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Department < entries[j].Department
	})
	return truncateAndRank(entries, n)
}

type LeaderboardQuery struct {
	Scope      LeaderboardScope
	Department string
	Window     Window
	TopN       int
}

type Leaderboard struct {
	Scope      LeaderboardScope   `json:"scope"`
	Department string             `json:"department,omitempty"`
	Window     string             `json:"window"`
	Entries    []LeaderboardEntry `json:"entries"`
}

func (q LeaderboardQuery) normalize() (LeaderboardQuery, error) {
	if q.Scope == "" {
		q.Scope = ScopeGlobal
	}
	if !q.Scope.Valid() {
		return q, apperr.Validation("unknown leaderboard scope %q", string(q.Scope))
	}
	if q.Scope == ScopeDepartment && q.Department == "" {
		return q, apperr.Validation("department is required for the department leaderboard")
	}
	if q.Scope != ScopeDepartment {
		q.Department = ""
	}
	if q.TopN == 0 {
		q.TopN = DefaultTopN
	}
	if q.TopN < 0 || q.TopN > MaxTopN {
		return q, apperr.Validation("top_n must be between 1 and %d", MaxTopN)
	}
	return q, nil
}

func (q LeaderboardQuery) cacheKey() string {
	return fmt.Sprintf("leaderboard:%s:%s:%s:%d", q.Scope, q.Department, q.Window, q.TopN)
}

// Leaderboard builds one board from a single counters snapshot. Every
// counter in the snapshot uses the same window boundary.
func (s *Service) Leaderboard(ctx context.Context, q LeaderboardQuery) (*Leaderboard, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}

	key := q.cacheKey()
	if s.cache != nil {
		var cached Leaderboard
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	counters, err := s.stats.AllCounters(ctx, q.Window.Since(s.now()))
	if err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	switch q.Scope {
	case ScopeGlobal:
		entries = TopUsersGlobal(counters, q.TopN)
	case ScopeDepartment:
		entries = TopUsersByDepartment(counters, q.Department, q.TopN)
	case ScopeDepartments:
		entries = TopDepartments(counters, q.TopN)
	case ScopeContributors:
		entries = TopContributorsBySent(counters, q.TopN)
	case ScopeTagged:
		entries = TopTagged(counters, q.TopN)
	}

	board := &Leaderboard{
		Scope:      q.Scope,
		Department: q.Department,
		Window:     q.Window.String(),
		Entries:    entries,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, board); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return board, nil
}
