package tokenguard

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/tokenguard/jwt"
	"github.com/alicebob/miniredis/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = append([]byte(nil), testSecret...)
	return cfg
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	users  *MemoryUserProvider
	sink   *ChannelSink
}

// newTestEngine builds an engine over miniredis with a user "alice".
// mutate, when non-nil, adjusts the config before Build.
func newTestEngine(t testing.TB, mutate func(*Config)) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	users := NewMemoryUserProvider(User{ID: "alice", Email: "alice@example.com", Name: "Alice"})
	sink := NewChannelSink(256)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})

	return &testEnv{engine: engine, mr: mr, rdb: rdb, users: users, sink: sink}
}

func (env *testEnv) issue(t testing.TB, userID string) TokenPair {
	t.Helper()
	pair, err := env.engine.IssuePair(context.Background(), User{ID: userID})
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	return pair
}

// signRaw mints a token with arbitrary claims under testSecret.
func signRaw(t testing.TB, method gojwt.SigningMethod, kind jwt.Kind, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		Kind: kind,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  gojwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	}
	token, err := gojwt.NewWithClaims(method, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign raw token: %v", err)
	}
	return token
}

type recordingTransport struct {
	published []TokenPair
	cleared   int
	err       error
}

func (r *recordingTransport) Publish(pair TokenPair) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, pair)
	return nil
}

func (r *recordingTransport) Clear() { r.cleared++ }

func drainEvents(sink *ChannelSink, want int) []AuditEvent {
	out := make([]AuditEvent, 0, want)
	deadline := time.After(2 * time.Second)
	for len(out) < want {
		select {
		case ev := <-sink.Events():
			out = append(out, ev)
		case <-deadline:
			return out
		}
	}
	return out
}
