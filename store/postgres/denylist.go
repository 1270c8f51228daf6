package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DenylistStore keeps revoked token digests in token_denylist. Rows are
// never removed by the engine; PurgeExpired is meant for a periodic job.
type DenylistStore struct {
	pool *pgxpool.Pool
}

var _ denylist.Store = (*DenylistStore)(nil)

func NewDenylistStore(pool *pgxpool.Pool) (*DenylistStore, error) {
	if pool == nil {
		return nil, denylist.ErrNilClient
	}
	return &DenylistStore{pool: pool}, nil
}

// Insert relies on the primary key: a second insert of the same digest
// affects no rows.
func (s *DenylistStore) Insert(ctx context.Context, entry denylist.Entry) (bool, error) {
	if entry.Token == "" {
		return false, denylist.ErrEmptyToken
	}

	const q = `
		INSERT INTO token_denylist (digest, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (digest) DO NOTHING`

	tag, err := s.pool.Exec(ctx, q, denylist.Digest(entry.Token), entry.ExpiresAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert denylist entry: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *DenylistStore) Find(ctx context.Context, token string) (denylist.Entry, bool, error) {
	if token == "" {
		return denylist.Entry{}, false, denylist.ErrEmptyToken
	}

	var expiresAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT expires_at FROM token_denylist WHERE digest = $1`,
		denylist.Digest(token),
	).Scan(&expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return denylist.Entry{}, false, nil
	}
	if err != nil {
		return denylist.Entry{}, false, fmt.Errorf("select denylist entry: %w", err)
	}
	return denylist.NewEntry(token, expiresAt), true, nil
}

// PurgeExpired deletes rows whose token expired before cutoff and reports
// how many were removed. Callers should pass a cutoff with some grace.
func (s *DenylistStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM token_denylist WHERE expires_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge denylist: %w", err)
	}
	return tag.RowsAffected(), nil
}
