package repository

import (
	"context"
	"time"

	"github.com/lalith-99/shoutout/internal/models"
)

// Every method takes ctx first: it carries the request deadline down to the
// storage round trip, so a cancelled request stops its query.
//
// Lookups by id return nil, nil when the row does not exist. The engine
// turns that into apperr.ErrNotFound; stores never guess at it.

// UserRepository is the identity collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
}

// ShoutOutFilter narrows a feed query. Zero values mean "no filter".
type ShoutOutFilter struct {
	// Department matches either the giver or the receiver department.
	Department string
	SenderID   int64
	// ParticipantID matches shout-outs the user gave or received.
	ParticipantID int64
	// ReceiverDepartment matches the receiver department only.
	ReceiverDepartment string
	Search             string
	Since              time.Time
	// Before is an id cursor: only rows with id < Before. 0 = from the newest.
	Before int64
	Limit  int
}

// ShoutOutRepository stores shout-outs. Deleted rows are returned by GetByID
// (the moderation path needs them) but never by List.
type ShoutOutRepository interface {
	Create(ctx context.Context, s *models.ShoutOut) (*models.ShoutOut, error)
	GetByID(ctx context.Context, shoutoutID int64) (*models.ShoutOut, error)
	// UpdateContent rewrites the author-editable fields and stamps edited_at.
	UpdateContent(ctx context.Context, s *models.ShoutOut) (*models.ShoutOut, error)
	SoftDelete(ctx context.Context, shoutoutID int64) error
	// List returns non-deleted shout-outs, newest (highest id) first.
	List(ctx context.Context, filter ShoutOutFilter) ([]models.ShoutOut, error)
}

// ReactionToggle is the outcome of one atomic toggle.
type ReactionToggle struct {
	Previous models.ReactionKind
	Current  models.ReactionKind
	Counts   models.ReactionCounts
}

// ReactionRepository is the reaction ledger storage. Toggle must apply the
// models.NextReaction transition atomically per (shoutout, user) key.
type ReactionRepository interface {
	Toggle(ctx context.Context, shoutoutID, userID int64, kind models.ReactionKind) (*ReactionToggle, error)
	Counts(ctx context.Context, shoutoutID int64) (models.ReactionCounts, error)
	// KindOf returns models.ReactionNone when the user has no reaction.
	KindOf(ctx context.Context, shoutoutID, userID int64) (models.ReactionKind, error)
}

// CommentRepository is append-only with a soft-delete flag.
type CommentRepository interface {
	Create(ctx context.Context, shoutoutID, userID int64, content string) (*models.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*models.Comment, error)
	// UpdateContent writes only when the content differs and returns
	// apperr.ErrNoChange otherwise, leaving edited_at untouched.
	UpdateContent(ctx context.Context, commentID int64, content string) (*models.Comment, error)
	SoftDelete(ctx context.Context, commentID int64) error
	// ListByShoutOut returns non-deleted comments, most recently touched first.
	ListByShoutOut(ctx context.Context, shoutoutID int64) ([]models.Comment, error)
}

// StatsRepository computes engagement counters from rows. A zero since
// means all time. All counters of one call share the same boundary.
type StatsRepository interface {
	UserCounters(ctx context.Context, userID int64, since time.Time) (*models.Counters, error)
	AllCounters(ctx context.Context, since time.Time) ([]models.Counters, error)
	ActivityCounts(ctx context.Context, userID int64, monthStart time.Time) (*models.ActivityCounts, error)
	// SendDays returns the distinct UTC days on or after since on which the
	// user sent a non-deleted shout-out, newest first.
	SendDays(ctx context.Context, userID int64, since time.Time) ([]time.Time, error)
	DepartmentSize(ctx context.Context, department string) (int, error)
}

// ReportRepository is the moderation collaborator's storage.
type ReportRepository interface {
	Create(ctx context.Context, shoutoutID, reporterID int64, reason string) (*models.Report, error)
	GetByID(ctx context.Context, reportID int64) (*models.Report, error)
	ListPending(ctx context.Context) ([]models.Report, error)
	// Resolve marks the report resolved. A delete action soft-deletes the
	// shout-out in the same transaction. Resolving twice is apperr.ErrConflict.
	Resolve(ctx context.Context, reportID, adminID int64, action models.ReportAction) (*models.Report, error)
	IsSuppressed(ctx context.Context, shoutoutID int64) (bool, error)
}
