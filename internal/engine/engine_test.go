package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/shoutout/internal/config"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// The achievement reads fan out with errgroup; none of them may outlive
// the call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testMilestones = config.Milestones{
	Streak:             7,
	Sent:               5,
	Received:           5,
	ReactionsGiven:     10,
	ReactionsReceived:  10,
	CommentsGiven:      10,
	CommentsReceived:   10,
	Tagged:             5,
	MonthlyContributor: 5,
}

// fixture is a Service over a fresh in-memory store sharing one movable
// clock with it.
type fixture struct {
	svc   *Service
	store *memory.Store
	now   time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.New(),
		now:   time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.store.SetClock(clock)

	repos := Repositories{
		Users:     f.store.Users(),
		ShoutOuts: f.store.ShoutOuts(),
		Reactions: f.store.Reactions(),
		Comments:  f.store.Comments(),
		Stats:     f.store.Stats(),
		Reports:   f.store.Reports(),
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	f.svc = NewService(repos, testMilestones, zaptest.NewLogger(t), opts...)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) user(name, dept string) *models.User {
	return f.store.AddUser(name, dept, models.RoleEmployee)
}

func (f *fixture) admin(name, dept string) *models.User {
	return f.store.AddUser(name, dept, models.RoleAdmin)
}

func (f *fixture) shoutOut(t *testing.T, giver, receiver *models.User, vis models.Visibility, tagged ...int64) *models.ShoutOut {
	t.Helper()
	in := ShoutOutInput{
		Message:       "thanks for the help",
		Visibility:    vis,
		TaggedUserIDs: tagged,
	}
	if receiver != nil {
		in.ReceiverID = &receiver.ID
	}
	so, err := f.svc.CreateShoutOut(context.Background(), giver.ID, in)
	require.NoError(t, err)
	return so
}
