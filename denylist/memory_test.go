package denylist

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreInsertFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)

	if ok, err := s.Insert(ctx, NewEntry("t1", exp)); err != nil || !ok {
		t.Fatalf("insert: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.Insert(ctx, NewEntry("t1", exp)); ok {
		t.Fatal("expected duplicate to be reported")
	}

	entry, ok, err := s.Find(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if entry.Token != "t1" {
		t.Fatalf("unexpected token %q", entry.Token)
	}
	if entry.ExpiresInMillis() != exp.UnixMilli() {
		t.Fatalf("expires_in mismatch")
	}
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_, _ = s.Insert(ctx, NewEntry("old", now.Add(-time.Second)))
	_, _ = s.Insert(ctx, NewEntry("live", now.Add(time.Hour)))

	if removed := s.PurgeExpired(now); removed != 1 {
		t.Fatalf("expected 1 purged entry, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", s.Len())
	}
	if _, ok, _ := s.Find(ctx, "live"); !ok {
		t.Fatal("live entry was purged")
	}
}
