package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
)

// Tags live in their own table; they are folded back into one array column
// so a shout-out is always read in a single round trip.
const shoutoutColumns = `
	s.id, s.giver_id, s.receiver_id, s.title, s.message, s.category, s.visibility,
	s.giver_department, s.receiver_department, s.image_ref, s.created_at, s.edited_at, s.is_deleted,
	COALESCE((
		SELECT array_agg(t.tagged_user_id ORDER BY t.tagged_user_id)
		FROM shoutout_tags t
		WHERE t.shoutout_id = s.id
	), '{}'::bigint[])`

type ShoutOutStore struct {
	pool *pgxpool.Pool
}

func NewShoutOutStore(pool *pgxpool.Pool) *ShoutOutStore {
	return &ShoutOutStore{pool: pool}
}

func scanShoutOut(row pgx.Row) (*models.ShoutOut, error) {
	var so models.ShoutOut
	err := row.Scan(
		&so.ID,
		&so.GiverID,
		&so.ReceiverID,
		&so.Title,
		&so.Message,
		&so.Category,
		&so.Visibility,
		&so.GiverDepartment,
		&so.ReceiverDepartment,
		&so.ImageRef,
		&so.CreatedAt,
		&so.EditedAt,
		&so.IsDeleted,
		&so.TaggedUserIDs,
	)
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (s *ShoutOutStore) Create(ctx context.Context, in *models.ShoutOut) (*models.ShoutOut, error) {
	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO shoutouts (giver_id, receiver_id, title, message, category, visibility,
				giver_department, receiver_department, image_ref, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			RETURNING id`

		err := tx.QueryRow(ctx, query,
			in.GiverID,
			in.ReceiverID,
			in.Title,
			in.Message,
			in.Category,
			in.Visibility,
			in.GiverDepartment,
			in.ReceiverDepartment,
			in.ImageRef,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert shoutout: %w", err)
		}
		return replaceTags(ctx, tx, id, in.TaggedUserIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// replaceTags sets the tag set of a shout-out inside the caller's transaction.
func replaceTags(ctx context.Context, tx pgx.Tx, shoutoutID int64, userIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM shoutout_tags WHERE shoutout_id = $1`, shoutoutID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO shoutout_tags (shoutout_id, tagged_user_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, query, shoutoutID, userIDs); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

func (s *ShoutOutStore) GetByID(ctx context.Context, shoutoutID int64) (*models.ShoutOut, error) {
	query := `SELECT ` + shoutoutColumns + `
		FROM shoutouts s
		WHERE s.id = $1`

	so, err := scanShoutOut(s.pool.QueryRow(ctx, query, shoutoutID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shoutout: %w", err)
	}
	return so, nil
}

func (s *ShoutOutStore) UpdateContent(ctx context.Context, in *models.ShoutOut) (*models.ShoutOut, error) {
	found := true
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE shoutouts
			SET title = $2, message = $3, category = $4, visibility = $5, image_ref = $6, edited_at = now()
			WHERE id = $1 AND NOT is_deleted`

		tag, err := tx.Exec(ctx, query, in.ID, in.Title, in.Message, in.Category, in.Visibility, in.ImageRef)
		if err != nil {
			return fmt.Errorf("update shoutout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			found = false
			return nil
		}
		return replaceTags(ctx, tx, in.ID, in.TaggedUserIDs)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return s.GetByID(ctx, in.ID)
}

// SoftDelete flags the row. Tags, reactions and comments stay in place so
// historical rows remain consistent; every read path filters on is_deleted.
func (s *ShoutOutStore) SoftDelete(ctx context.Context, shoutoutID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE shoutouts SET is_deleted = true WHERE id = $1`, shoutoutID)
	if err != nil {
		return fmt.Errorf("delete shoutout: %w", err)
	}
	return nil
}

func (s *ShoutOutStore) List(ctx context.Context, filter repository.ShoutOutFilter) ([]models.ShoutOut, error) {
	conds := []string{"NOT s.is_deleted"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Department != "" {
		p := arg(filter.Department)
		conds = append(conds, "(s.giver_department = "+p+" OR s.receiver_department = "+p+")")
	}
	if filter.ReceiverDepartment != "" {
		conds = append(conds, "s.receiver_department = "+arg(filter.ReceiverDepartment))
	}
	if filter.SenderID != 0 {
		conds = append(conds, "s.giver_id = "+arg(filter.SenderID))
	}
	if filter.ParticipantID != 0 {
		p := arg(filter.ParticipantID)
		conds = append(conds, "(s.giver_id = "+p+" OR s.receiver_id = "+p+")")
	}
	if filter.Search != "" {
		conds = append(conds, "s.message ILIKE '%' || "+arg(filter.Search)+" || '%'")
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "s.created_at >= "+arg(filter.Since))
	}
	if filter.Before > 0 {
		conds = append(conds, "s.id < "+arg(filter.Before))
	}

	query := `SELECT ` + shoutoutColumns + `
		FROM shoutouts s
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY s.id DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shoutouts: %w", err)
	}
	defer rows.Close()

	shoutouts := make([]models.ShoutOut, 0)
	for rows.Next() {
		so, err := scanShoutOut(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shoutout: %w", err)
		}
		shoutouts = append(shoutouts, *so)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shoutouts: %w", err)
	}

	return shoutouts, nil
}
