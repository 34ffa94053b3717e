package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
)

const reportColumns = `id, shoutout_id, reporter_id, reason, status, action, resolved_by, created_at, resolved_at`

type ReportStore struct {
	pool *pgxpool.Pool
}

func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	err := row.Scan(
		&r.ID,
		&r.ShoutOutID,
		&r.ReporterID,
		&r.Reason,
		&r.Status,
		&r.Action,
		&r.ResolvedBy,
		&r.CreatedAt,
		&r.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) Create(ctx context.Context, shoutoutID, reporterID int64, reason string) (*models.Report, error) {
	query := `
		INSERT INTO reports (shoutout_id, reporter_id, reason, status, created_at)
		VALUES ($1, $2, $3, 'pending', now())
		RETURNING ` + reportColumns

	r, err := scanReport(s.pool.QueryRow(ctx, query, shoutoutID, reporterID, reason))
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

func (s *ReportStore) GetByID(ctx context.Context, reportID int64) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	r, err := scanReport(s.pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *ReportStore) ListPending(ctx context.Context) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + `
		FROM reports
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// Resolve only moves a pending report, so two admins resolving the same
// report cannot both win. A delete action soft-deletes the shout-out in the
// same transaction.
func (s *ReportStore) Resolve(ctx context.Context, reportID, adminID int64, action models.ReportAction) (*models.Report, error) {
	var resolved *models.Report
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE reports
			SET status = 'resolved', action = $3, resolved_by = $2, resolved_at = now()
			WHERE id = $1 AND status = 'pending'
			RETURNING ` + reportColumns

		r, err := scanReport(tx.QueryRow(ctx, query, reportID, adminID, action))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("resolve report: %w", err)
		}

		if action == models.ReportActionDelete {
			_, err := tx.Exec(ctx, `UPDATE shoutouts SET is_deleted = true WHERE id = $1`, r.ShoutOutID)
			if err != nil {
				return fmt.Errorf("delete reported shoutout: %w", err)
			}
		}
		resolved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resolved != nil {
		return resolved, nil
	}

	existing, err := s.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return nil, apperr.Conflict("report %d is already resolved", reportID)
}

func (s *ReportStore) IsSuppressed(ctx context.Context, shoutoutID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reports
			WHERE shoutout_id = $1 AND status = 'resolved' AND action = 'delete'
		)`

	var suppressed bool
	if err := s.pool.QueryRow(ctx, query, shoutoutID).Scan(&suppressed); err != nil {
		return false, fmt.Errorf("check suppression: %w", err)
	}
	return suppressed, nil
}
