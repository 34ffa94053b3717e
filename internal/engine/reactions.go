package engine

import (
	"context"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

type ReactionOutcome string

const (
	ReactionAdded    ReactionOutcome = "added"
	ReactionReplaced ReactionOutcome = "replaced"
	ReactionRemoved  ReactionOutcome = "removed"
)

// ReactionState is what a client renders under a shout-out: the per-kind
// counts and the viewer's own kind. Outcome is set only by a toggle.
type ReactionState struct {
	ShoutOutID int64                 `json:"shoutout_id"`
	Counts     models.ReactionCounts `json:"counts"`
	Mine       models.ReactionKind   `json:"mine,omitempty"`
	Outcome    ReactionOutcome       `json:"outcome,omitempty"`
}

func toggleOutcome(prev, next models.ReactionKind) ReactionOutcome {
	switch {
	case next == models.ReactionNone:
		return ReactionRemoved
	case prev == models.ReactionNone:
		return ReactionAdded
	default:
		return ReactionReplaced
	}
}

// ToggleReaction applies one reaction click. Selecting the kind the user
// already holds clears it; any other kind replaces it.
//
// Why isn't the read-decide-write done here?
//   - Two clicks from the same user can land on two servers at once. If the
//     engine read the current kind and then wrote the next one, both clicks
//     could read "none" and both insert, leaving two kinds held.
//   - So the whole transition is pushed into ReactionRepository.Toggle, which
//     runs it under one lock per (shoutout, user): a row lock in Postgres,
//     the store mutex in memory. The engine only validates and reports.
func (s *Service) ToggleReaction(ctx context.Context, shoutoutID, userID int64, kind models.ReactionKind) (*ReactionState, error) {
	if !kind.Valid() {
		return nil, apperr.Validation("unknown reaction kind %q", string(kind))
	}
	viewer, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, shoutoutID, viewer); err != nil {
		return nil, err
	}

	res, err := s.reactions.Toggle(ctx, shoutoutID, userID, kind)
	if err != nil {
		return nil, err
	}

	outcome := toggleOutcome(res.Previous, res.Current)
	s.logger.Debug("reaction toggled",
		zap.Int64("shoutout_id", shoutoutID),
		zap.Int64("user_id", userID),
		zap.Stringer("previous", res.Previous),
		zap.Stringer("current", res.Current),
		zap.String("outcome", string(outcome)),
	)
	return &ReactionState{
		ShoutOutID: shoutoutID,
		Counts:     res.Counts,
		Mine:       res.Current,
		Outcome:    outcome,
	}, nil
}

// Reactions reads the reaction state of a shout-out for viewerID.
func (s *Service) Reactions(ctx context.Context, shoutoutID, viewerID int64) (*ReactionState, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, shoutoutID, viewer); err != nil {
		return nil, err
	}

	counts, err := s.reactions.Counts(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	mine, err := s.reactions.KindOf(ctx, shoutoutID, viewerID)
	if err != nil {
		return nil, err
	}
	return &ReactionState{ShoutOutID: shoutoutID, Counts: counts, Mine: mine}, nil
}
