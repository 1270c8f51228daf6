package tokenguard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/tokenguard/denylist"
)

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	env := newTestEngine(t, nil)
	pair := env.issue(t, "alice")
	creds := Credentials{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := env.engine.Refresh(context.Background(), creds, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrTokenRevoked) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}
}

func TestRefreshConcurrencyMemoryStore(t *testing.T) {
	store := denylist.NewMemoryStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithDenylist(store).
		WithUserProvider(NewMemoryUserProvider(User{ID: "alice"})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	pair, err := engine.IssuePair(context.Background(), User{ID: "alice"})
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := engine.Refresh(context.Background(), Credentials{
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
			}, nil); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 denylist entries, got %d", store.Len())
	}
}
