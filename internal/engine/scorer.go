package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
)

// Score weights. Changing them is a deployment, not a request parameter.
const (
	WeightSent     = 10
	WeightReceived = 15
	WeightTagged   = 5
	WeightComment  = 2
)

func Score(c models.Counters) int {
	return WeightSent*c.Sent +
		WeightReceived*c.Received +
		WeightTagged*c.Tagged +
		WeightComment*c.Comments
}

// Window bounds created_at for every counter of one query. Days == 0 is
// all time; otherwise it is the rolling last Days days.
type Window struct {
	Days int
}

var WindowAll = Window{}

// ParseWindow accepts "", "all", "7d", "30d" or a bare positive day count.
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return WindowAll, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil || n <= 0 {
		return Window{}, apperr.Validation("invalid window %q, expected all or a positive number of days", s)
	}
	return Window{Days: n}, nil
}

func (w Window) String() string {
	if w.Days <= 0 {
		return "all"
	}
	return fmt.Sprintf("%dd", w.Days)
}

// Since is the inclusive lower bound for created_at, or the zero time for
// all time.
func (w Window) Since(now time.Time) time.Time {
	if w.Days <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(w.Days) * 24 * time.Hour)
}

type UserScore struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Department string `json:"department"`
	Window     string `json:"window"`
	Sent       int    `json:"sent"`
	Received   int    `json:"received"`
	Tagged     int    `json:"tagged"`
	Comments   int    `json:"comment_count"`
	Score      int    `json:"score"`
}

func (s *Service) Score(ctx context.Context, userID int64, w Window) (*UserScore, error) {
	c, err := s.stats.UserCounters(ctx, userID, w.Since(s.now()))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	return &UserScore{
		UserID:     c.UserID,
		Username:   c.Username,
		Department: c.Department,
		Window:     w.String(),
		Sent:       c.Sent,
		Received:   c.Received,
		Tagged:     c.Tagged,
		Comments:   c.Comments,
		Score:      Score(*c),
	}, nil
}
