package tokenguard

import (
	"context"
	"testing"
)

func BenchmarkAuthenticate(b *testing.B) {
	env := newTestEngine(b, nil)
	pair := env.issue(b, "alice")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken); err != nil {
			b.Fatalf("authenticate failed: %v", err)
		}
	}
}

func BenchmarkRefresh(b *testing.B) {
	env := newTestEngine(b, nil)
	pair := env.issue(b, "alice")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := env.engine.Refresh(context.Background(), Credentials{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}, nil)
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		pair = next
	}
}

func BenchmarkIssuePair(b *testing.B) {
	env := newTestEngine(b, func(c *Config) {
		c.Metrics.Enabled = false
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := env.engine.IssuePair(context.Background(), User{ID: "alice"}); err != nil {
			b.Fatalf("issue failed: %v", err)
		}
	}
}
