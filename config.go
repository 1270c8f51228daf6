package tokenguard

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full engine configuration. Build copies it, so later
// changes to the caller's value have no effect on a running Engine.
type Config struct {
	JWT      JWTConfig
	Denylist DenylistConfig
	Refresh  RefreshConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the token codec. Access and refresh tokens share
// Secret and SigningMethod.
type JWTConfig struct {
	SigningMethod string // "HS512" (default), "HS384" or "HS256"
	Secret        []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
	// RejectExpiredRefresh refuses to rotate a pair whose refresh token has
	// itself expired. Disable to accept any correctly signed refresh token.
	RejectExpiredRefresh bool
}

/*
====================================
DENYLIST / REFRESH CONFIG
====================================
*/

// DenylistConfig applies to the Redis denylist created by Builder.WithRedis.
type DenylistConfig struct {
	RedisPrefix string
	MinTTL      time.Duration
}

// RefreshConfig configures the per-IP refresh throttle. It needs Redis and
// stays off while MaxAttemptsPerIP is zero.
type RefreshConfig struct {
	MaxAttemptsPerIP int
	Window           time.Duration
	RedisPrefix      string
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// MaxLeeway is the largest clock skew Validate accepts. Stores that reap
// denylist entries must keep them at least this long past token expiry.
const MaxLeeway = 2 * time.Minute

// DefaultConfig returns a config with 30 minute access tokens, 30 day
// refresh tokens and HS512. Secret must still be set.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod:        "HS512",
			AccessTTL:            30 * time.Minute,
			RefreshTTL:           30 * 24 * time.Hour,
			RejectExpiredRefresh: true,
		},
		Denylist: DenylistConfig{
			RedisPrefix: "bl",
			MinTTL:      time.Minute,
		},
		Refresh: RefreshConfig{
			MaxAttemptsPerIP: 0,
			Window:           time.Minute,
			RedisPrefix:      "rl:refresh",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.JWT.Secret) > 0 {
		out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.JWT.SigningMethod) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT signing method %q", c.JWT.SigningMethod)
	}
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT Secret is required")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > MaxLeeway {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	if c.Denylist.MinTTL < 0 {
		return errors.New("Denylist MinTTL must be >= 0")
	}

	if c.Refresh.MaxAttemptsPerIP < 0 {
		return errors.New("Refresh MaxAttemptsPerIP must be >= 0")
	}
	if c.Refresh.MaxAttemptsPerIP > 0 && c.Refresh.Window <= 0 {
		return errors.New("Refresh Window must be > 0 when throttling is enabled")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
