package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/shoutout/internal/models"
)

// StatsStore computes engagement counters straight from the rows. Nothing
// here is cached or stored, so counters cannot drift from the data.
type StatsStore struct {
	pool *pgxpool.Pool
}

func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

// sinceArg maps the zero time ("all time") to NULL, which the queries
// below COALESCE to -infinity.
func sinceArg(since time.Time) any {
	if since.IsZero() {
		return nil
	}
	return since
}

func (s *StatsStore) UserCounters(ctx context.Context, userID int64, since time.Time) (*models.Counters, error) {
	query := `
		SELECT u.id, u.username, u.department,
			(SELECT count(*) FROM shoutouts s
			 WHERE s.giver_id = u.id AND NOT s.is_deleted
			   AND s.created_at >= COALESCE($2, '-infinity'::timestamptz)),
			(SELECT count(*) FROM shoutouts s
			 WHERE s.receiver_id = u.id AND NOT s.is_deleted
			   AND s.created_at >= COALESCE($2, '-infinity'::timestamptz)),
			(SELECT count(*) FROM shoutout_tags t JOIN shoutouts s ON s.id = t.shoutout_id
			 WHERE t.tagged_user_id = u.id AND NOT s.is_deleted
			   AND s.created_at >= COALESCE($2, '-infinity'::timestamptz)),
			(SELECT count(*) FROM comments c
			 WHERE c.user_id = u.id AND NOT c.is_deleted
			   AND c.created_at >= COALESCE($2, '-infinity'::timestamptz))
		FROM users u
		WHERE u.id = $1`

	var c models.Counters
	err := s.pool.QueryRow(ctx, query, userID, sinceArg(since)).Scan(
		&c.UserID,
		&c.Username,
		&c.Department,
		&c.Sent,
		&c.Received,
		&c.Tagged,
		&c.Comments,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user counters: %w", err)
	}
	return &c, nil
}

// AllCounters returns one row per user, including users with no activity,
// ordered by user id.
func (s *StatsStore) AllCounters(ctx context.Context, since time.Time) ([]models.Counters, error) {
	query := `
		WITH bound AS (
			SELECT COALESCE($1, '-infinity'::timestamptz) AS since
		), sent AS (
			SELECT s.giver_id AS user_id, count(*) AS n
			FROM shoutouts s, bound
			WHERE NOT s.is_deleted AND s.created_at >= bound.since
			GROUP BY s.giver_id
		), received AS (
			SELECT s.receiver_id AS user_id, count(*) AS n
			FROM shoutouts s, bound
			WHERE s.receiver_id IS NOT NULL AND NOT s.is_deleted AND s.created_at >= bound.since
			GROUP BY s.receiver_id
		), tagged AS (
			SELECT t.tagged_user_id AS user_id, count(*) AS n
			FROM shoutout_tags t JOIN shoutouts s ON s.id = t.shoutout_id, bound
			WHERE NOT s.is_deleted AND s.created_at >= bound.since
			GROUP BY t.tagged_user_id
		), commented AS (
			SELECT c.user_id, count(*) AS n
			FROM comments c, bound
			WHERE NOT c.is_deleted AND c.created_at >= bound.since
			GROUP BY c.user_id
		)
		SELECT u.id, u.username, u.department,
			COALESCE(sent.n, 0), COALESCE(received.n, 0),
			COALESCE(tagged.n, 0), COALESCE(commented.n, 0)
		FROM users u
		LEFT JOIN sent ON sent.user_id = u.id
		LEFT JOIN received ON received.user_id = u.id
		LEFT JOIN tagged ON tagged.user_id = u.id
		LEFT JOIN commented ON commented.user_id = u.id
		ORDER BY u.id`

	rows, err := s.pool.Query(ctx, query, sinceArg(since))
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	defer rows.Close()

	counters := make([]models.Counters, 0)
	for rows.Next() {
		var c models.Counters
		if err := rows.Scan(
			&c.UserID,
			&c.Username,
			&c.Department,
			&c.Sent,
			&c.Received,
			&c.Tagged,
			&c.Comments,
		); err != nil {
			return nil, fmt.Errorf("scan counters: %w", err)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counters: %w", err)
	}

	return counters, nil
}

func (s *StatsStore) ActivityCounts(ctx context.Context, userID int64, monthStart time.Time) (*models.ActivityCounts, error) {
	query := `
		SELECT
			(SELECT count(*) FROM shoutouts s
			 WHERE s.giver_id = $1 AND NOT s.is_deleted),
			(SELECT count(*) FROM shoutouts s
			 WHERE s.receiver_id = $1 AND NOT s.is_deleted),
			(SELECT count(*) FROM shoutout_tags t JOIN shoutouts s ON s.id = t.shoutout_id
			 WHERE t.tagged_user_id = $1 AND NOT s.is_deleted),
			(SELECT count(*) FROM reactions r JOIN shoutouts s ON s.id = r.shoutout_id
			 WHERE r.user_id = $1 AND NOT s.is_deleted),
			(SELECT count(*) FROM reactions r JOIN shoutouts s ON s.id = r.shoutout_id
			 WHERE s.receiver_id = $1 AND NOT s.is_deleted),
			(SELECT count(*) FROM comments c JOIN shoutouts s ON s.id = c.shoutout_id
			 WHERE c.user_id = $1 AND NOT c.is_deleted AND NOT s.is_deleted),
			(SELECT count(*) FROM comments c JOIN shoutouts s ON s.id = c.shoutout_id
			 WHERE s.receiver_id = $1 AND NOT c.is_deleted AND NOT s.is_deleted),
			(SELECT count(*) FROM shoutouts s
			 WHERE s.giver_id = $1 AND NOT s.is_deleted AND s.created_at >= $2)`

	var a models.ActivityCounts
	err := s.pool.QueryRow(ctx, query, userID, monthStart).Scan(
		&a.Sent,
		&a.Received,
		&a.Tagged,
		&a.ReactionsGiven,
		&a.ReactionsReceived,
		&a.CommentsGiven,
		&a.CommentsReceived,
		&a.MonthlySent,
	)
	if err != nil {
		return nil, fmt.Errorf("get activity counts: %w", err)
	}
	return &a, nil
}

func (s *StatsStore) SendDays(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', s.created_at AT TIME ZONE 'UTC') AS day
		FROM shoutouts s
		WHERE s.giver_id = $1 AND NOT s.is_deleted
		  AND s.created_at >= COALESCE($2, '-infinity'::timestamptz)
		ORDER BY day DESC`

	rows, err := s.pool.Query(ctx, query, userID, sinceArg(since))
	if err != nil {
		return nil, fmt.Errorf("list send days: %w", err)
	}
	defer rows.Close()

	days := make([]time.Time, 0)
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan send day: %w", err)
		}
		days = append(days, day.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate send days: %w", err)
	}
	return days, nil
}

func (s *StatsStore) DepartmentSize(ctx context.Context, department string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE department = $1`, department).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count department users: %w", err)
	}
	return n, nil
}
