//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("tokenguard"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	// A second run is a no-op.
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestPostgresStores(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	users, err := NewUserStore(pool)
	require.NoError(t, err)
	store, err := NewDenylistStore(pool)
	require.NoError(t, err)

	t.Run("users", func(t *testing.T) {
		_, err := users.GetUserByID(ctx, "alice")
		assert.ErrorIs(t, err, tokenguard.ErrUserNotFound)

		require.NoError(t, users.PutUser(ctx, tokenguard.User{
			ID:         "alice",
			Email:      "alice@example.com",
			Attributes: map[string]string{"role": "admin"},
		}))
		u, err := users.GetUserByID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, "admin", u.Attributes["role"])

		require.NoError(t, users.PutUser(ctx, tokenguard.User{ID: "bob"}))
		require.NoError(t, users.DeleteUser(ctx, "bob"))
		_, err = users.GetUserByID(ctx, "bob")
		assert.ErrorIs(t, err, tokenguard.ErrUserNotFound)
	})

	t.Run("denylist insert if absent", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Millisecond)
		entry := denylist.NewEntry("token-a", exp)

		ok, err := store.Insert(ctx, entry)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Insert(ctx, denylist.NewEntry("token-a", exp.Add(time.Hour)))
		require.NoError(t, err)
		assert.False(t, ok)

		got, found, err := store.Find(ctx, "token-a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, exp.UnixMilli(), got.ExpiresInMillis())

		_, found, err = store.Find(ctx, "token-b")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("denylist concurrent single winner", func(t *testing.T) {
		const n = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.Insert(ctx, denylist.NewEntry("contended", time.Now().Add(time.Hour)))
				if err == nil && ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("purge", func(t *testing.T) {
		_, err := store.Insert(ctx, denylist.NewEntry("old", time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		n, err := store.PurgeExpired(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, found, err := store.Find(ctx, "token-a")
		require.NoError(t, err)
		assert.True(t, found, "unexpired entries survive the purge")
	})

	t.Run("engine end to end", func(t *testing.T) {
		cfg := tokenguard.DefaultConfig()
		cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
		engine, err := tokenguard.New().WithConfig(cfg).WithDenylist(store).WithUserProvider(users).Build()
		require.NoError(t, err)
		defer engine.Close()

		pair, err := engine.IssuePair(ctx, tokenguard.User{ID: "alice"})
		require.NoError(t, err)
		creds := tokenguard.Credentials{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}

		_, err = engine.Refresh(ctx, creds, nil)
		require.NoError(t, err)
		_, err = engine.Refresh(ctx, creds, nil)
		assert.ErrorIs(t, err, tokenguard.ErrTokenRevoked)
	})
}
