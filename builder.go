package tokenguard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/MrEthical07/tokenguard/internal/audit"
	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/jwt"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder can be built once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	denylist     denylist.Store
	userProvider UserProvider
	auditSink    AuditSink
	logger       *slog.Logger

	built bool
}

// New starts a Builder from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client used for the default denylist and the
// refresh throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDenylist sets an explicit denylist store. It takes precedence over
// the Redis store WithRedis would otherwise create.
func (b *Builder) WithDenylist(store denylist.Store) *Builder {
	b.denylist = store
	return b
}

func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger for best-effort failures. Defaults to slog.Default.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	store := b.denylist
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("denylist store or redis client required")
		}
		rs, err := denylist.NewRedisStore(b.redis, denylist.RedisOptions{
			Prefix: cfg.Denylist.RedisPrefix,
			MinTTL: cfg.Denylist.MinTTL,
			Grace:  cfg.JWT.Leeway,
		})
		if err != nil {
			return nil, err
		}
		store = rs
	}

	if cfg.Refresh.MaxAttemptsPerIP > 0 && b.redis == nil {
		return nil, errors.New("refresh throttling requires redis client")
	}

	codec, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cfg.JWT.Secret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	b.built = true

	return &Engine{
		config:   cfg,
		codec:    codec,
		users:    b.userProvider,
		denylist: store,
		limiter: rate.New(b.redis, rate.Config{
			MaxAttempts: cfg.Refresh.MaxAttemptsPerIP,
			Window:      cfg.Refresh.Window,
			Prefix:      cfg.Refresh.RedisPrefix,
		}),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
		now:     time.Now,
	}, nil
}
