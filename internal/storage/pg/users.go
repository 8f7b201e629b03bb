package pg

import (
	"context"
	"fmt"

	"github.com/contoso/burger-api/internal/domain/model"
)

func (s *Storage) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	if err := s.conn(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w: %w", model.ErrStoreUnavailable, err)
	}
	return exists, nil
}

func (s *Storage) CreateUser(ctx context.Context, id, name string) error {
	query := `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`

	if _, err := s.conn(ctx).Exec(ctx, query, id, name); err != nil {
		return fmt.Errorf("create user: %w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users`

	if err := s.conn(ctx).QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w: %w", model.ErrStoreUnavailable, err)
	}
	return count, nil
}
