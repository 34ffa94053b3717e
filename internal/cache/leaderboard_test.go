package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type board struct {
	Scope   string  `json:"scope"`
	UserIDs []int64 `json:"user_ids"`
}

func setupTest(t *testing.T, ttl time.Duration) (*Snapshots, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewSnapshots(client, ttl, zaptest.NewLogger(t)), mr
}

func TestSnapshotsRoundTripAndExpiry(t *testing.T) {
	t.Parallel()
	snaps, mr := setupTest(t, 30*time.Second)
	ctx := context.Background()

	var got board
	found, err := snaps.Get(ctx, "leaderboard:global::all:10", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := board{Scope: "global", UserIDs: []int64{3, 1, 2}}
	require.NoError(t, snaps.Set(ctx, "leaderboard:global::all:10", want))
	assert.True(t, mr.Exists("shoutout:leaderboard:global::all:10"))
	assert.Equal(t, 30*time.Second, mr.TTL("shoutout:leaderboard:global::all:10"))

	found, err = snaps.Get(ctx, "leaderboard:global::all:10", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	mr.FastForward(31 * time.Second)
	found, err = snaps.Get(ctx, "leaderboard:global::all:10", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotsDisabledWithZeroTTL(t *testing.T) {
	t.Parallel()
	snaps, mr := setupTest(t, 0)
	ctx := context.Background()

	require.NoError(t, snaps.Set(ctx, "k", board{Scope: "global"}))
	assert.False(t, mr.Exists("shoutout:k"))

	var got board
	found, err := snaps.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotsDropsCorruptEntry(t *testing.T) {
	t.Parallel()
	snaps, mr := setupTest(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("shoutout:k", "{not json"))

	var got board
	found, err := snaps.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("shoutout:k"))
}

func TestSnapshotsReportsRedisErrors(t *testing.T) {
	t.Parallel()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	defer client.Close()
	snaps := NewSnapshots(client, time.Minute, zaptest.NewLogger(t))

	var got board
	_, err = snaps.Get(context.Background(), "k", &got)
	require.Error(t, err)
	require.Error(t, snaps.Set(context.Background(), "k", board{}))
}
