package engine

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    models.Counters
		want int
	}{
		{"zero", models.Counters{}, 0},
		{"worked example", models.Counters{Sent: 3, Received: 2, Tagged: 1, Comments: 4}, 73},
		{"sent only", models.Counters{Sent: 1}, 10},
		{"received only", models.Counters{Received: 1}, 15},
		{"tagged only", models.Counters{Tagged: 1}, 5},
		{"comments only", models.Counters{Comments: 1}, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Score(tt.c))
		})
	}
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", WindowAll, false},
		{"all", WindowAll, false},
		{"ALL", WindowAll, false},
		{"7d", Window{Days: 7}, false},
		{"30d", Window{Days: 30}, false},
		{"90", Window{Days: 90}, false},
		{"0d", Window{}, true},
		{"-3", Window{}, true},
		{"week", Window{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseWindow(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowSince(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, WindowAll.Since(now).IsZero())
	assert.Equal(t, time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC), Window{Days: 7}.Since(now))
	assert.Equal(t, "7d", Window{Days: 7}.String())
	assert.Equal(t, "all", WindowAll.String())
}

func TestServiceScoreUsesOneWindowForAllCounters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user("alice", "Engineering")
	bob := f.user("bob", "Sales")

	f.now = f.now.AddDate(0, 0, -20)
	old := f.shoutOut(t, bob, alice, models.VisibilityPublic, alice.ID)
	_, err := f.svc.AddComment(ctx, old.ID, alice.ID, "thank you")
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, 20)

	f.shoutOut(t, alice, bob, models.VisibilityPublic)

	all, err := f.svc.Score(ctx, alice.ID, WindowAll)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Sent)
	assert.Equal(t, 1, all.Received)
	assert.Equal(t, 1, all.Tagged)
	assert.Equal(t, 1, all.Comments)
	assert.Equal(t, 10+15+5+2, all.Score)

	week, err := f.svc.Score(ctx, alice.ID, Window{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, week.Sent)
	assert.Zero(t, week.Received)
	assert.Zero(t, week.Tagged)
	assert.Zero(t, week.Comments)
	assert.Equal(t, 10, week.Score)
	assert.Equal(t, "7d", week.Window)

	_, err = f.svc.Score(ctx, 999, WindowAll)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
