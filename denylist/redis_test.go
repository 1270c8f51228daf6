package denylist

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	store, err := NewRedisStore(rdb, RedisOptions{})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	return store, mr
}

func TestRedisStoreInsertAndFind(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Millisecond)

	inserted, err := store.Insert(ctx, NewEntry("tok-a", exp))
	if err != nil || !inserted {
		t.Fatalf("insert: inserted=%v err=%v", inserted, err)
	}

	entry, ok, err := store.Find(ctx, "tok-a")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if !entry.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, entry.ExpiresAt)
	}

	if _, ok, _ := store.Find(ctx, "tok-b"); ok {
		t.Fatal("unexpected hit for unknown token")
	}

	ttl := mr.TTL("bl:" + Digest("tok-a"))
	if ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Fatalf("expected ttl close to token lifetime, got %v", ttl)
	}
}

func TestRedisStoreDuplicateInsertKeepsFirst(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	first := time.Now().Add(time.Hour).Truncate(time.Millisecond)

	if ok, err := store.Insert(ctx, NewEntry("dup", first)); err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}
	ok, err := store.Insert(ctx, NewEntry("dup", first.Add(time.Hour)))
	if err != nil {
		t.Fatalf("duplicate insert returned error: %v", err)
	}
	if ok {
		t.Fatal("expected duplicate insert to report inserted=false")
	}

	entry, _, _ := store.Find(ctx, "dup")
	if !entry.ExpiresAt.Equal(first) {
		t.Fatalf("duplicate overwrote entry: %v", entry.ExpiresAt)
	}
}

func TestRedisStoreEntryExpiresWithToken(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, NewEntry("short", time.Now().Add(10*time.Minute))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mr.FastForward(9 * time.Minute)
	if _, ok, _ := store.Find(ctx, "short"); !ok {
		t.Fatal("entry vanished before token expiry")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Find(ctx, "short"); ok {
		t.Fatal("entry still present after token expiry")
	}
}

func TestRedisStorePastExpiryUsesMinTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, NewEntry("lapsed", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if ttl := mr.TTL("bl:" + Digest("lapsed")); ttl != time.Minute {
		t.Fatalf("expected min ttl of 1m, got %v", ttl)
	}
}

func TestRedisStoreConcurrentInsertSingleWinner(t *testing.T) {
	store, _ := newTestRedisStore(t)
	exp := time.Now().Add(time.Hour)

	const n = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			ok, err := store.Insert(context.Background(), NewEntry("race", exp))
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one winning insert, got %d", got)
	}
}

func TestRedisStoreRejectsEmptyToken(t *testing.T) {
	store, _ := newTestRedisStore(t)
	if _, err := store.Insert(context.Background(), Entry{}); err != ErrEmptyToken {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := NewRedisStore(nil, RedisOptions{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestRedisStoreGraceOutlivesLeeway(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	store, err := NewRedisStore(rdb, RedisOptions{Grace: 90 * time.Second})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}

	// A token one second from expiry stays denied for its remaining life
	// plus the grace, not just the one minute floor.
	ctx := context.Background()
	if ok, err := store.Insert(ctx, NewEntry("near-expiry", time.Now().Add(time.Second))); err != nil || !ok {
		t.Fatalf("insert: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("bl:" + Digest("near-expiry")); ttl <= 90*time.Second || ttl > 91*time.Second {
		t.Fatalf("expected ttl of exp+grace, got %v", ttl)
	}

	mr.FastForward(75 * time.Second)
	if _, ok, err := store.Find(ctx, "near-expiry"); err != nil || !ok {
		t.Fatalf("entry must survive past exp within grace: ok=%v err=%v", ok, err)
	}

	mr.FastForward(20 * time.Second)
	if _, ok, _ := store.Find(ctx, "near-expiry"); ok {
		t.Fatal("entry should expire after exp+grace")
	}
}

func TestNewRedisStoreRejectsNegativeGrace(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	if _, err := NewRedisStore(rdb, RedisOptions{Grace: -time.Second}); err != ErrNegativeGrace {
		t.Fatalf("expected ErrNegativeGrace, got %v", err)
	}
}
