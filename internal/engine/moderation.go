package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"go.uber.org/zap"
)

const MaxReportReasonLength = 500

// IsSuppressed asks the moderation gate whether a shout-out was taken down
// by a resolved report.
//
// Why check this separately when a delete resolution already soft-deletes
// the row?
//   - The report and the shout-out are owned by different collaborators.
//     The admin's decision is the source of truth; is_deleted is a side
//     effect of it. If the row is ever undeleted by hand, the content still
//     stays down, because every normal read asks the gate too.
//   - Only an explicit delete action suppresses. A pending report or a
//     dismissed one leaves the content visible, so filing a report can't be
//     used to hide somebody else's shout-out.
func (s *Service) IsSuppressed(ctx context.Context, shoutoutID int64) (bool, error) {
	return s.reports.IsSuppressed(ctx, shoutoutID)
}

// Report files a moderation report against a shout-out the reporter can see.
func (s *Service) Report(ctx context.Context, shoutoutID, reporterID int64, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("report reason must not be empty")
	}
	if utf8.RuneCountInString(reason) > MaxReportReasonLength {
		return nil, apperr.Validation("report reason must be at most %d characters", MaxReportReasonLength)
	}
	reporter, err := s.user(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleShoutOut(ctx, shoutoutID, reporter); err != nil {
		return nil, err
	}

	r, err := s.reports.Create(ctx, shoutoutID, reporterID, reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info("shoutout reported",
		zap.Int64("report_id", r.ID),
		zap.Int64("shoutout_id", shoutoutID),
		zap.Int64("reporter_id", reporterID),
	)
	return r, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, apperr.Forbidden("admin role required")
	}
	return u, nil
}

func (s *Service) PendingReports(ctx context.Context, adminID int64) ([]models.Report, error) {
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.reports.ListPending(ctx)
}

// ResolveReport closes a pending report. ReportActionDelete also
// soft-deletes the shout-out, atomically with the resolution.
func (s *Service) ResolveReport(ctx context.Context, reportID, adminID int64, action models.ReportAction) (*models.Report, error) {
	if !action.Valid() {
		return nil, apperr.Validation("action must be dismiss or delete")
	}
	if _, err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	r, err := s.reports.Resolve(ctx, reportID, adminID, action)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("report %d not found", reportID)
	}
	s.logger.Info("report resolved",
		zap.Int64("report_id", reportID),
		zap.Int64("shoutout_id", r.ShoutOutID),
		zap.Int64("admin_id", adminID),
		zap.String("action", string(action)),
	)
	return r, nil
}

// ReviewShoutOut is the moderation read path: admins get the shout-out even
// when it is deleted.
func (s *Service) ReviewShoutOut(ctx context.Context, shoutoutID, viewerID int64) (*models.ShoutOut, error) {
	viewer, err := s.user(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() {
		return nil, apperr.Forbidden("admin role required")
	}
	so, err := s.shoutouts.GetByID(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	if so == nil || !CanReview(so, viewer) {
		return nil, apperr.NotFound("shoutout %d not found", shoutoutID)
	}
	return so, nil
}
