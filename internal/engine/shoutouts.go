package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
	"go.uber.org/zap"
)

const (
	MaxTitleLength   = 200
	MaxMessageLength = 2000
	MaxTaggedUsers   = 20

	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// ShoutOutInput carries the author-editable fields of a shout-out.
// ReceiverID is ignored on edit: the receiver and both department snapshots
// are fixed at creation.
type ShoutOutInput struct {
	ReceiverID    *int64            `json:"receiver_id"`
	TaggedUserIDs []int64           `json:"tagged_user_ids"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Category      models.Category   `json:"category"`
	Visibility    models.Visibility `json:"visibility"`
	ImageRef      *string           `json:"image_ref"`
}

func (in *ShoutOutInput) normalize(giver *models.User) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)

	if in.Message == "" {
		return apperr.Validation("message must not be empty")
	}
	if utf8.RuneCountInString(in.Message) > MaxMessageLength {
		return apperr.Validation("message must be at most %d characters", MaxMessageLength)
	}
	if in.Title == "" {
		in.Title = fmt.Sprintf("Shoutout from %s", giver.Username)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return apperr.Validation("title must be at most %d characters", MaxTitleLength)
	}
	if in.Category == "" {
		in.Category = models.CategoryTeamwork
	}
	if !in.Category.Valid() {
		return apperr.Validation("unknown category %q", string(in.Category))
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return apperr.Validation("unknown visibility %q", string(in.Visibility))
	}
	if len(in.TaggedUserIDs) > MaxTaggedUsers {
		return apperr.Validation("at most %d users can be tagged", MaxTaggedUsers)
	}
	if in.ImageRef != nil && strings.TrimSpace(*in.ImageRef) == "" {
		in.ImageRef = nil
	}
	return nil
}

// knownUsers drops tag ids that do not resolve to a user.
func (s *Service) knownUsers(ctx context.Context, ids []int64) ([]int64, error) {
	known := make([]int64, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			known = append(known, id)
		}
	}
	return known, nil
}

func (s *Service) CreateShoutOut(ctx context.Context, giverID int64, in ShoutOutInput) (*models.ShoutOut, error) {
	giver, err := s.user(ctx, giverID)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(giver); err != nil {
		return nil, err
	}

	so := &models.ShoutOut{
		GiverID:         giver.ID,
		Title:           in.Title,
		Message:         in.Message,
		Category:        in.Category,
		Visibility:      in.Visibility,
		GiverDepartment: giver.Department,
		ImageRef:        in.ImageRef,
	}
	if in.ReceiverID != nil {
		if *in.ReceiverID == giver.ID {
			return nil, apperr.Validation("you cannot give a shoutout to yourself")
		}
		receiver, err := s.user(ctx, *in.ReceiverID)
		if err != nil {
			return nil, err
		}
		so.ReceiverID = &receiver.ID
		so.ReceiverDepartment = receiver.Department
	}
	if so.TaggedUserIDs, err = s.knownUsers(ctx, in.TaggedUserIDs); err != nil {
		return nil, err
	}

	created, err := s.shoutouts.Create(ctx, so)
	if err != nil {
		return nil, err
	}
	s.logger.Info("shoutout created",
		zap.Int64("shoutout_id", created.ID),
		zap.Int64("giver_id", giverID),
		zap.String("visibility", string(created.Visibility)),
	)
	return created, nil
}

// EditShoutOut replaces the author-editable fields, tags included, and
// stamps edited_at. Only the giver may edit.
func (s *Service) EditShoutOut(ctx context.Context, shoutoutID, actorID int64, in ShoutOutInput) (*models.ShoutOut, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	existing, err := s.shoutouts.GetByID(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.IsDeleted {
		return nil, apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	if existing.GiverID != actor.ID {
		return nil, apperr.Forbidden("only the giver can edit this shoutout")
	}
	if err := in.normalize(actor); err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Message = in.Message
	existing.Category = in.Category
	existing.Visibility = in.Visibility
	existing.ImageRef = in.ImageRef
	if existing.TaggedUserIDs, err = s.knownUsers(ctx, in.TaggedUserIDs); err != nil {
		return nil, err
	}

	updated, err := s.shoutouts.UpdateContent(ctx, existing)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	return updated, nil
}

// DeleteShoutOut soft-deletes. The giver and admins may delete.
func (s *Service) DeleteShoutOut(ctx context.Context, shoutoutID, actorID int64) error {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return err
	}
	so, err := s.shoutouts.GetByID(ctx, shoutoutID)
	if err != nil {
		return err
	}
	if so == nil || so.IsDeleted {
		return apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	if so.GiverID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("only the giver or an admin can delete this shoutout")
	}

	if err := s.shoutouts.SoftDelete(ctx, shoutoutID); err != nil {
		return err
	}
	s.logger.Info("shoutout deleted", zap.Int64("shoutout_id", shoutoutID), zap.Int64("actor_id", actorID))
	return nil
}

type FeedQuery struct {
	Department string
	SenderID   int64
	Search     string
	Window     Window
	// Before is the id cursor returned as NextBefore by the previous page.
	Before int64
	Limit  int
}

type FeedPage struct {
	Items []models.ShoutOut `json:"items"`
	// NextBefore is 0 when there is nothing older.
	NextBefore int64 `json:"next_before"`
}

// Feed pages through shout-outs newest first, keeping only those the viewer
// may see.
//
// Why loop over storage batches instead of one query?
//   - Visibility depends on the viewer (private, department_only) and on
//     the moderation state, which lives in another table. Pushing all of
//     that into SQL would duplicate IsVisible in two stores.
//   - So we fetch Limit rows, drop what the viewer can't see, and keep
//     pulling older batches (moving the Before cursor past every row we
//     looked at, hidden or not) until the page is full or storage runs dry.
//     Hidden rows therefore never shrink a page, and the next cursor never
//     revisits them.
func (s *Service) Feed(ctx context.Context, viewerID int64, q FeedQuery) (*FeedPage, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if q.Limit == 0 {
		q.Limit = DefaultFeedLimit
	}
	if q.Limit < 0 || q.Limit > MaxFeedLimit {
		return nil, apperr.Validation("limit must be between 1 and %d", MaxFeedLimit)
	}
	if q.Before < 0 {
		return nil, apperr.Validation("before must not be negative")
	}

	filter := repository.ShoutOutFilter{
		Department: q.Department,
		SenderID:   q.SenderID,
		Search:     strings.TrimSpace(q.Search),
		Since:      q.Window.Since(s.now()),
		Before:     q.Before,
		Limit:      q.Limit,
	}

	page := &FeedPage{Items: make([]models.ShoutOut, 0, q.Limit)}
	for len(page.Items) < q.Limit {
		batch, err := s.shoutouts.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range batch {
			so := &batch[i]
			filter.Before = so.ID
			if !IsVisible(so, viewer) {
				continue
			}
			suppressed, err := s.reports.IsSuppressed(ctx, so.ID)
			if err != nil {
				return nil, err
			}
			if suppressed {
				continue
			}
			page.Items = append(page.Items, *so)
			if len(page.Items) == q.Limit {
				break
			}
		}
		if len(batch) < filter.Limit {
			break
		}
	}

	if len(page.Items) == q.Limit {
		page.NextBefore = page.Items[len(page.Items)-1].ID
	}
	return page, nil
}

type MyShoutOuts struct {
	Sent     []models.ShoutOut `json:"sent"`
	Received []models.ShoutOut `json:"received"`
	Stats    *UserScore        `json:"stats"`
}

type MyShoutOutsQuery struct {
	Window Window
	// ReceiverDepartment narrows both lists to shout-outs received by that
	// department. "" and "all" mean no filter.
	ReceiverDepartment string
}

// MyShoutOuts lists what the viewer sent and received inside the window,
// with the viewer's counters for the same window.
//
// The viewer is a participant of every row here, so visibility is not
// applied: a department_only shout-out received from another department
// is still the receiver's own. Filtering it would make the lists disagree
// with Stats, which counts every non-deleted row. Stats ignores
// ReceiverDepartment; it is always the viewer's full total for the window.
func (s *Service) MyShoutOuts(ctx context.Context, viewerID int64, q MyShoutOutsQuery) (*MyShoutOuts, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	filter := repository.ShoutOutFilter{
		ParticipantID: viewer.ID,
		Since:         q.Window.Since(s.now()),
	}
	if dept := strings.TrimSpace(q.ReceiverDepartment); dept != "" && !strings.EqualFold(dept, "all") {
		filter.ReceiverDepartment = dept
	}
	rows, err := s.shoutouts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	mine := &MyShoutOuts{
		Sent:     make([]models.ShoutOut, 0),
		Received: make([]models.ShoutOut, 0),
	}
	for _, so := range rows {
		if so.GiverID == viewer.ID {
			mine.Sent = append(mine.Sent, so)
		}
		if so.IsReceiver(viewer.ID) {
			mine.Received = append(mine.Received, so)
		}
	}

	if mine.Stats, err = s.Score(ctx, viewer.ID, q.Window); err != nil {
		return nil, err
	}
	return mine, nil
}

type DashboardStats struct {
	Department        string `json:"department"`
	DepartmentUsers   int    `json:"department_users"`
	ShoutOutsSent     int    `json:"shoutouts_sent"`
	ShoutOutsReceived int    `json:"shoutouts_received"`
	Score             int    `json:"score"`
}

// DashboardStats is the all-time summary shown on the viewer's home page.
func (s *Service) DashboardStats(ctx context.Context, viewerID int64) (*DashboardStats, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	size, err := s.stats.DepartmentSize(ctx, viewer.Department)
	if err != nil {
		return nil, err
	}
	score, err := s.Score(ctx, viewer.ID, WindowAll)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		Department:        viewer.Department,
		DepartmentUsers:   size,
		ShoutOutsSent:     score.Sent,
		ShoutOutsReceived: score.Received,
		Score:             score.Score,
	}, nil
}
