package models

import (
	"time"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// User is owned by the identity collaborator. Everything else in the
// engine references users by ID only.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Department string    `json:"department"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Visibility is the audience scope of a shout-out.
type Visibility string

const (
	VisibilityPublic         Visibility = "public"
	VisibilityPrivate        Visibility = "private"
	VisibilityDepartmentOnly Visibility = "department_only"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityDepartmentOnly:
		return true
	}
	return false
}

type Category string

const (
	CategoryTeamwork        Category = "teamwork"
	CategoryInnovation      Category = "innovation"
	CategoryLeadership      Category = "leadership"
	CategoryCustomerService Category = "customer_service"
	CategoryProblemSolving  Category = "problem_solving"
	CategoryMentorship      Category = "mentorship"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTeamwork, CategoryInnovation, CategoryLeadership,
		CategoryCustomerService, CategoryProblemSolving, CategoryMentorship:
		return true
	}
	return false
}

// ShoutOut is a recognition message from a giver to an optional receiver.
//
// Tagged users are held as IDs, never as embedded User values. The giver
// and receiver departments are snapshotted when the shout-out is created,
// so visibility can be decided from the row and the viewer alone.
type ShoutOut struct {
	ID                 int64      `json:"id"`
	GiverID            int64      `json:"giver_id"`
	ReceiverID         *int64     `json:"receiver_id,omitempty"`
	TaggedUserIDs      []int64    `json:"tagged_user_ids"`
	Title              string     `json:"title"`
	Message            string     `json:"message"`
	Category           Category   `json:"category"`
	Visibility         Visibility `json:"visibility"`
	GiverDepartment    string     `json:"giver_department"`
	ReceiverDepartment string     `json:"receiver_department,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	EditedAt           *time.Time `json:"edited_at,omitempty"`
	IsDeleted          bool       `json:"is_deleted"`
	ImageRef           *string    `json:"image_ref,omitempty"`
}

// IsReceiver reports whether userID is the receiver of s.
func (s *ShoutOut) IsReceiver(userID int64) bool {
	return s.ReceiverID != nil && *s.ReceiverID == userID
}

// IsTagged reports whether userID is among the tagged users of s.
func (s *ShoutOut) IsTagged(userID int64) bool {
	for _, id := range s.TaggedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is attached to a shout-out. Deleted comments stay in storage for
// moderation audit but are excluded from counts and listings.
type Comment struct {
	ID         int64      `json:"id"`
	ShoutOutID int64      `json:"shoutout_id"`
	UserID     int64      `json:"user_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	IsDeleted  bool       `json:"is_deleted"`
}

// TouchedAt is the display sort key: the last edit, or creation time.
func (c *Comment) TouchedAt() time.Time {
	if c.EditedAt != nil {
		return *c.EditedAt
	}
	return c.CreatedAt
}

// Reaction is keyed by (ShoutOutID, UserID); a user holds at most one kind
// per shout-out.
type Reaction struct {
	ShoutOutID int64        `json:"shoutout_id"`
	UserID     int64        `json:"user_id"`
	Kind       ReactionKind `json:"kind"`
	CreatedAt  time.Time    `json:"created_at"`
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

// ReportAction is what the resolving admin decided.
type ReportAction string

const (
	ReportActionNone    ReportAction = ""
	ReportActionDismiss ReportAction = "dismiss"
	ReportActionDelete  ReportAction = "delete"
)

func (a ReportAction) Valid() bool {
	return a == ReportActionDismiss || a == ReportActionDelete
}

type Report struct {
	ID         int64        `json:"id"`
	ShoutOutID int64        `json:"shoutout_id"`
	ReporterID int64        `json:"reporter_id"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	Action     ReportAction `json:"action,omitempty"`
	ResolvedBy *int64       `json:"resolved_by,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

// Counters are the raw engagement counts of one user inside a time window.
// They are always computed from rows, never stored.
type Counters struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Department string `json:"department"`
	Sent       int    `json:"sent"`
	Received   int    `json:"received"`
	Tagged     int    `json:"tagged"`
	Comments   int    `json:"comment_count"`
}

// ActivityCounts feeds the achievement engine. All values are all-time
// except MonthlySent.
type ActivityCounts struct {
	Sent              int
	Received          int
	Tagged            int
	ReactionsGiven    int
	ReactionsReceived int
	CommentsGiven     int
	CommentsReceived  int
	MonthlySent       int
}
