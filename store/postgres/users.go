package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/tokenguard"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore is a tokenguard.UserProvider over the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ tokenguard.UserProvider = (*UserStore)(nil)

func NewUserStore(pool *pgxpool.Pool) (*UserStore, error) {
	if pool == nil {
		return nil, errors.New("postgres: nil pool")
	}
	return &UserStore{pool: pool}, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, userID string) (tokenguard.User, error) {
	const q = `SELECT id, email, name, attributes FROM users WHERE id = $1`

	var u tokenguard.User
	err := s.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Email, &u.Name, &u.Attributes)
	if errors.Is(err, pgx.ErrNoRows) {
		return tokenguard.User{}, tokenguard.ErrUserNotFound
	}
	if err != nil {
		return tokenguard.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// PutUser inserts user or overwrites the stored record with the same id.
func (s *UserStore) PutUser(ctx context.Context, u tokenguard.User) error {
	const q = `
		INSERT INTO users (id, email, name, attributes)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb))
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, attributes = EXCLUDED.attributes`

	if u.ID == "" {
		return errors.New("postgres: empty user id")
	}
	var attrs map[string]string
	if len(u.Attributes) > 0 {
		attrs = u.Attributes
	}
	if _, err := s.pool.Exec(ctx, q, u.ID, u.Email, u.Name, attrs); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// DeleteUser removes a user. Missing users are not an error.
func (s *UserStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
