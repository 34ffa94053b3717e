package engine

import (
	"context"
	"time"

	"github.com/lalith-99/shoutout/internal/models"
	"golang.org/x/sync/errgroup"
)

type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

type Metric string

const (
	MetricStreak             Metric = "consistency_streak"
	MetricSent               Metric = "shoutouts_sent"
	MetricReceived           Metric = "shoutouts_received"
	MetricReactionsGiven     Metric = "reactions_given"
	MetricReactionsReceived  Metric = "reactions_received"
	MetricCommentsGiven      Metric = "comments_given"
	MetricCommentsReceived   Metric = "comments_received"
	MetricTagged             Metric = "tagged"
	MetricMonthlyContributor Metric = "monthly_contributor"
)

type Achievement struct {
	Metric        Metric  `json:"metric"`
	Count         int     `json:"count"`
	Milestone     int     `json:"milestone"`
	TiersEarned   []Tier  `json:"tiers_earned"`
	NextMilestone int     `json:"next_milestone"`
	Progress      float64 `json:"progress"`
	Earned        bool    `json:"earned"`
}

// TiersEarned returns the tiers reached by count for base milestone m:
// bronze at m, silver at 2m, gold at 4m.
func TiersEarned(count, m int) []Tier {
	tiers := make([]Tier, 0, 3)
	if m <= 0 {
		return tiers
	}
	if count >= m {
		tiers = append(tiers, TierBronze)
	}
	if count >= 2*m {
		tiers = append(tiers, TierSilver)
	}
	if count >= 4*m {
		tiers = append(tiers, TierGold)
	}
	return tiers
}

// NextMilestone doubles the target every time count reaches it, without an
// upper bound: for m=10, counts 9, 10 and 20 give 10, 20 and 40.
func NextMilestone(count, m int) int {
	if m <= 0 {
		return 0
	}
	next := m
	for count >= next {
		next *= 2
	}
	return next
}

// Progress is count/next capped at 1.
func Progress(count, next int) float64 {
	if next <= 0 {
		return 0
	}
	p := float64(count) / float64(next)
	if p > 1 {
		return 1
	}
	return p
}

func NewAchievement(metric Metric, count, m int) Achievement {
	next := NextMilestone(count, m)
	return Achievement{
		Metric:        metric,
		Count:         count,
		Milestone:     m,
		TiersEarned:   TiersEarned(count, m),
		NextMilestone: next,
		Progress:      Progress(count, next),
		Earned:        m > 0 && count >= m,
	}
}

func utcDay(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Streak counts consecutive UTC days with at least one shout-out sent. The
// run must end today or yesterday, so a streak survives until the end of
// the first day without activity. days may be in any order and may repeat.
func Streak(days []time.Time, now time.Time) int {
	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		set[utcDay(d)] = struct{}{}
	}

	cursor := utcDay(now)
	if _, ok := set[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := set[cursor]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := set[cursor]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Achievements computes every metric for userID. The activity counters and
// the send-day history are read concurrently; both are read-only snapshots.
func (s *Service) Achievements(ctx context.Context, userID int64) ([]Achievement, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()

	var (
		counts *models.ActivityCounts
		days   []time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.stats.ActivityCounts(gctx, userID, monthStart(now))
		return err
	})
	g.Go(func() error {
		var err error
		days, err = s.stats.SendDays(gctx, userID, time.Time{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := s.milestones
	return []Achievement{
		NewAchievement(MetricStreak, Streak(days, now), m.Streak),
		NewAchievement(MetricSent, counts.Sent, m.Sent),
		NewAchievement(MetricReceived, counts.Received, m.Received),
		NewAchievement(MetricReactionsGiven, counts.ReactionsGiven, m.ReactionsGiven),
		NewAchievement(MetricReactionsReceived, counts.ReactionsReceived, m.ReactionsReceived),
		NewAchievement(MetricCommentsGiven, counts.CommentsGiven, m.CommentsGiven),
		NewAchievement(MetricCommentsReceived, counts.CommentsReceived, m.CommentsReceived),
		NewAchievement(MetricTagged, counts.Tagged, m.Tagged),
		NewAchievement(MetricMonthlyContributor, counts.MonthlySent, m.MonthlyContributor),
	}, nil
}
