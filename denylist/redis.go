package denylist

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "bl"
	defaultMinTTL      = time.Minute
)

// RedisOptions configures RedisStore.
type RedisOptions struct {
	// Prefix is prepended to every key as "<prefix>:<digest>". Defaults to "bl".
	Prefix string
	// MinTTL floors the key lifetime for tokens that are already past expiry.
	MinTTL time.Duration
	// Grace keeps keys alive this long past the token's expiry. Set it to
	// the verifier's leeway, which still accepts the token until exp+leeway.
	Grace time.Duration
}

// RedisStore keeps entries as plain string keys whose TTL ends Grace after
// the token would have expired. The value is the expiry in epoch
// milliseconds.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	minTTL time.Duration
	grace  time.Duration
	now    func() time.Time
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient, opts RedisOptions) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	if opts.MinTTL <= 0 {
		opts.MinTTL = defaultMinTTL
	}
	if opts.Grace < 0 {
		return nil, ErrNegativeGrace
	}
	return &RedisStore{
		redis:  client,
		prefix: opts.Prefix,
		minTTL: opts.MinTTL,
		grace:  opts.Grace,
		now:    time.Now,
	}, nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + Digest(token)
}

// Insert runs SET NX PX so concurrent revocations of the same token
// resolve to a single winner.
func (s *RedisStore) Insert(ctx context.Context, entry Entry) (bool, error) {
	if entry.Token == "" {
		return false, ErrEmptyToken
	}

	ttl := entry.ExpiresAt.Add(s.grace).Sub(s.now())
	if ttl < s.minTTL {
		ttl = s.minTTL
	}

	value := strconv.FormatInt(entry.ExpiresInMillis(), 10)
	ok, err := s.redis.SetNX(ctx, s.key(entry.Token), value, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Find reports whether token is denylisted.
func (s *RedisStore) Find(ctx context.Context, token string) (Entry, bool, error) {
	if token == "" {
		return Entry{}, false, ErrEmptyToken
	}

	raw, err := s.redis.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	entry := Entry{Token: token}
	if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		entry.ExpiresAt = time.UnixMilli(ms)
	}
	return entry, true, nil
}
