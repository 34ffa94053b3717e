package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Zero(t, cfg.LeaderboardCacheTTL)
	assert.Equal(t, "all", cfg.DefaultWindow)
	assert.Equal(t, 5, cfg.Milestones.Sent)
	assert.Equal(t, 10, cfg.Milestones.ReactionsGiven)
	assert.Equal(t, 7, cfg.Milestones.Streak)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MILESTONE_SENT", "12")
	t.Setenv("LEADERBOARD_CACHE_TTL", "45s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Milestones.Sent)
	assert.Equal(t, 45*time.Second, cfg.LeaderboardCacheTTL)
}

func TestLoadConfigRejectsBadMilestone(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MILESTONE_TAGGED", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MILESTONE_TAGGED")
}
