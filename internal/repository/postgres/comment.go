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

type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID,
		&c.ShoutOutID,
		&c.UserID,
		&c.Content,
		&c.CreatedAt,
		&c.EditedAt,
		&c.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) Create(ctx context.Context, shoutoutID, userID int64, content string) (*models.Comment, error) {
	query := `
		INSERT INTO comments (shoutout_id, user_id, content, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, shoutout_id, user_id, content, created_at, edited_at, is_deleted`

	c, err := scanComment(s.pool.QueryRow(ctx, query, shoutoutID, userID, content))
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (s *CommentStore) GetByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	query := `
		SELECT id, shoutout_id, user_id, content, created_at, edited_at, is_deleted
		FROM comments
		WHERE id = $1`

	c, err := scanComment(s.pool.QueryRow(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// UpdateContent is a single conditional UPDATE: the content comparison and
// the edited_at bump happen in the same statement, so an identical edit
// never touches the row.
func (s *CommentStore) UpdateContent(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET content = $2, edited_at = now()
		WHERE id = $1 AND NOT is_deleted AND content IS DISTINCT FROM $2
		RETURNING id, shoutout_id, user_id, content, created_at, edited_at, is_deleted`

	c, err := scanComment(s.pool.QueryRow(ctx, query, commentID, content))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	// Nothing updated: either the row is gone or the content was identical.
	existing, err := s.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.IsDeleted {
		return nil, nil
	}
	return existing, apperr.ErrNoChange
}

func (s *CommentStore) SoftDelete(ctx context.Context, commentID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE comments SET is_deleted = true WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentStore) ListByShoutOut(ctx context.Context, shoutoutID int64) ([]models.Comment, error) {
	query := `
		SELECT id, shoutout_id, user_id, content, created_at, edited_at, is_deleted
		FROM comments
		WHERE shoutout_id = $1 AND NOT is_deleted
		ORDER BY COALESCE(edited_at, created_at) DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, shoutoutID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
