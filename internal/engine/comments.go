package engine

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

const MaxCommentLength = 1000

type CommentOutcome string

const (
	CommentEdited    CommentOutcome = "edited"
	CommentUnchanged CommentOutcome = "no_change"
)

// CommentEdit is the result of an edit. An identical edit is a valid
// terminal state (CommentUnchanged), not an error.
type CommentEdit struct {
	Comment *models.Comment `json:"comment"`
	Outcome CommentOutcome  `json:"outcome"`
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("comment content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", apperr.Validation("comment must be at most %d characters", MaxCommentLength)
	}
	return content, nil
}

func (s *Service) AddComment(ctx context.Context, shoutoutID, userID int64, content string) (*models.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	author, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, shoutoutID, author); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(ctx, shoutoutID, userID, content)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("comment added", zap.Int64("comment_id", c.ID), zap.Int64("shoutout_id", shoutoutID))
	return c, nil
}

// EditComment lets the author change the content. Nobody else may edit,
// admins included.
func (s *Service) EditComment(ctx context.Context, commentID, actorID int64, content string) (*CommentEdit, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsDeleted {
		return nil, apperr.NotFound("comment %d not found", commentID)
	}
	if c.UserID != actorID {
		return nil, apperr.Forbidden("only the author can edit this comment")
	}
	// Comments under a deleted, hidden or moderated shout-out are frozen.
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, c.ShoutOutID, actor); err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, content)
	if errors.Is(err, apperr.ErrNoChange) {
		return &CommentEdit{Comment: updated, Outcome: CommentUnchanged}, nil
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("comment %d not found", commentID)
	}
	return &CommentEdit{Comment: updated, Outcome: CommentEdited}, nil
}

// DeleteComment soft-deletes a comment. The author and admins may delete.
func (s *Service) DeleteComment(ctx context.Context, commentID, actorID int64) error {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return err
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil || c.IsDeleted {
		return apperr.NotFound("comment %d not found", commentID)
	}
	if c.UserID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("only the author or an admin can delete this comment")
	}

	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("actor_id", actorID),
		zap.Bool("by_admin", c.UserID != actor.ID),
	)
	return nil
}

func (s *Service) ListComments(ctx context.Context, shoutoutID, viewerID int64) ([]models.Comment, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, shoutoutID, viewer); err != nil {
		return nil, err
	}
	return s.comments.ListByShoutOut(ctx, shoutoutID)
}
