package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/shoutout/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a user row. Users are owned by the identity service; this
// exists for seeding and integration tests.
func (s *UserStore) Create(ctx context.Context, username, department string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (username, department, role, joined_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, username, department, role, joined_at`

	var u models.User
	err := s.pool.QueryRow(ctx, query, username, department, role).Scan(
		&u.ID,
		&u.Username,
		&u.Department,
		&u.Role,
		&u.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, username, department, role, joined_at
		FROM users
		WHERE id = $1`

	var u models.User
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.Username,
		&u.Department,
		&u.Role,
		&u.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
