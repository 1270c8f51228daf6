package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes the refresh throttle.
type Config struct {
	// MaxAttempts is the number of refresh calls allowed per client IP in
	// one window. Zero disables the limiter.
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// Limiter counts refresh attempts per client IP in fixed Redis windows.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns nil when the client is nil or the limit is disabled; a nil
// Limiter allows everything.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if client == nil || cfg.MaxAttempts <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl:refresh"
	}
	return &Limiter{redis: client, config: cfg}
}

// CheckRefresh counts one attempt for ip and fails once the window budget
// is spent. Requests without a known IP are not throttled.
func (l *Limiter) CheckRefresh(ctx context.Context, ip string) error {
	if l == nil || ip == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, l.key(ip), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) key(ip string) string {
	return l.config.Prefix + ":" + ip
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the first hit opens it.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
