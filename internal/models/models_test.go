package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReactionKind(t *testing.T) {
	t.Parallel()

	for _, k := range ReactionKinds {
		got, err := ParseReactionKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	for _, bad := range []string{"", "none", "LIKE", "thumbsup"} {
		_, err := ParseReactionKind(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewReactionCountsHasEveryKind(t *testing.T) {
	t.Parallel()

	counts := NewReactionCounts()
	assert.Len(t, counts, 7)
	assert.Zero(t, counts.Total())
}

func TestCommentTouchedAt(t *testing.T) {
	t.Parallel()

	c := Comment{}
	assert.Equal(t, c.CreatedAt, c.TouchedAt())

	edited := c.CreatedAt.Add(1)
	c.EditedAt = &edited
	assert.Equal(t, edited, c.TouchedAt())
}

func TestShoutOutMembership(t *testing.T) {
	t.Parallel()

	receiver := int64(2)
	s := ShoutOut{GiverID: 1, ReceiverID: &receiver, TaggedUserIDs: []int64{3, 4}}

	assert.True(t, s.IsReceiver(2))
	assert.False(t, s.IsReceiver(1))
	assert.True(t, s.IsTagged(4))
	assert.False(t, s.IsTagged(2))

	s.ReceiverID = nil
	assert.False(t, s.IsReceiver(2))
}

func TestNextReaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prev      ReactionKind
		requested ReactionKind
		want      ReactionKind
	}{
		{name: "first reaction", prev: ReactionNone, requested: ReactionClap, want: ReactionClap},
		{name: "same kind clears", prev: ReactionClap, requested: ReactionClap, want: ReactionNone},
		{name: "different kind replaces", prev: ReactionClap, requested: ReactionStar, want: ReactionStar},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NextReaction(tt.prev, tt.requested))
		})
	}
}
