package memory

import (
	"context"
	"sort"

	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
)

type ReportStore struct {
	db *Store
}

func (s *ReportStore) Create(ctx context.Context, shoutoutID, reporterID int64, reason string) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.nextReportID++
	r := &models.Report{
		ID:         s.db.nextReportID,
		ShoutOutID: shoutoutID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportPending,
		CreatedAt:  s.db.now(),
	}
	s.db.reports[r.ID] = r
	return copyReport(r), nil
}

func (s *ReportStore) GetByID(ctx context.Context, reportID int64) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.reports[reportID]
	if !ok {
		return nil, nil
	}
	return copyReport(r), nil
}

func (s *ReportStore) ListPending(ctx context.Context) ([]models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Report, 0)
	for _, r := range s.db.reports {
		if r.Status == models.ReportPending {
			out = append(out, *copyReport(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ReportStore) Resolve(ctx context.Context, reportID, adminID int64, action models.ReportAction) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.reports[reportID]
	if !ok {
		return nil, nil
	}
	if r.Status == models.ReportResolved {
		return nil, apperr.Conflict("report %d is already resolved", reportID)
	}

	now := s.db.now()
	admin := adminID
	r.Status = models.ReportResolved
	r.Action = action
	r.ResolvedBy = &admin
	r.ResolvedAt = &now

	if action == models.ReportActionDelete {
		if so, ok := s.db.shoutouts[r.ShoutOutID]; ok {
			so.IsDeleted = true
		}
	}
	return copyReport(r), nil
}

func (s *ReportStore) IsSuppressed(ctx context.Context, shoutoutID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, r := range s.db.reports {
		if r.ShoutOutID == shoutoutID && r.Status == models.ReportResolved && r.Action == models.ReportActionDelete {
			return true, nil
		}
	}
	return false, nil
}
