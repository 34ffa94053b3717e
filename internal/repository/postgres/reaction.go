package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/shoutout/internal/apperr"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
)

type ReactionStore struct {
	pool *pgxpool.Pool
}

func NewReactionStore(pool *pgxpool.Pool) *ReactionStore {
	return &ReactionStore{pool: pool}
}

// Toggle runs the whole read-decide-write cycle in one transaction.
//
// SELECT ... FOR UPDATE locks the existing (shoutout, user) row, so two
// concurrent toggles on the same key are serialized and the second one sees
// the first one's result. When no row exists there is nothing to lock; the
// INSERT then races on the primary key, and the loser gets ErrConflict
// instead of silently holding a second kind.
//
// If ctx is cancelled mid-way the transaction rolls back and the previous
// kind stays in place.
func (s *ReactionStore) Toggle(ctx context.Context, shoutoutID, userID int64, kind models.ReactionKind) (*repository.ReactionToggle, error) {
	var result repository.ReactionToggle

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		prev := models.ReactionNone
		err := tx.QueryRow(ctx, `
			SELECT kind FROM reactions
			WHERE shoutout_id = $1 AND user_id = $2
			FOR UPDATE`, shoutoutID, userID).Scan(&prev)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock reaction: %w", err)
		}

		next := models.NextReaction(prev, kind)
		switch {
		case next == models.ReactionNone:
			_, err = tx.Exec(ctx, `
				DELETE FROM reactions
				WHERE shoutout_id = $1 AND user_id = $2`, shoutoutID, userID)
			if err != nil {
				return fmt.Errorf("delete reaction: %w", err)
			}
		case prev == models.ReactionNone:
			tag, err := tx.Exec(ctx, `
				INSERT INTO reactions (shoutout_id, user_id, kind, created_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (shoutout_id, user_id) DO NOTHING`, shoutoutID, userID, next)
			if err != nil {
				return fmt.Errorf("insert reaction: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return apperr.Conflict("reaction on shoutout %d changed concurrently, retry", shoutoutID)
			}
		default:
			_, err = tx.Exec(ctx, `
				UPDATE reactions SET kind = $3, created_at = now()
				WHERE shoutout_id = $1 AND user_id = $2`, shoutoutID, userID, next)
			if err != nil {
				return fmt.Errorf("replace reaction: %w", err)
			}
		}

		counts, err := countReactions(ctx, tx, shoutoutID)
		if err != nil {
			return err
		}

		result = repository.ReactionToggle{Previous: prev, Current: next, Counts: counts}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
			return nil, apperr.Conflict("reaction on shoutout %d changed concurrently, retry", shoutoutID)
		}
		return nil, err
	}
	return &result, nil
}

func (s *ReactionStore) Counts(ctx context.Context, shoutoutID int64) (models.ReactionCounts, error) {
	return countReactions(ctx, s.pool, shoutoutID)
}

func (s *ReactionStore) KindOf(ctx context.Context, shoutoutID, userID int64) (models.ReactionKind, error) {
	kind := models.ReactionNone
	err := s.pool.QueryRow(ctx, `
		SELECT kind FROM reactions
		WHERE shoutout_id = $1 AND user_id = $2`, shoutoutID, userID).Scan(&kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ReactionNone, nil
		}
		return models.ReactionNone, fmt.Errorf("get reaction: %w", err)
	}
	return kind, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func countReactions(ctx context.Context, q querier, shoutoutID int64) (models.ReactionCounts, error) {
	rows, err := q.Query(ctx, `
		SELECT kind, count(*)
		FROM reactions
		WHERE shoutout_id = $1
		GROUP BY kind`, shoutoutID)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	defer rows.Close()

	counts := models.NewReactionCounts()
	for rows.Next() {
		var kind models.ReactionKind
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan reaction count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reaction counts: %w", err)
	}
	return counts, nil
}
