// Package config loads the tokenguard server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/cookie"
)

var (
	ErrMissingSecret       = errors.New("config: JWT_SECRET is required")
	ErrMissingCookieSecret = errors.New("config: COOKIE_SECRET is required")
	ErrSharedCookieSecret  = errors.New("config: COOKIE_SECRET must differ from JWT_SECRET")
)

type ServerConfig struct {
	HTTPAddr         string        `mapstructure:"HTTP_ADDR"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTAlgorithm     string        `mapstructure:"JWT_ALGORITHM"`
	AccessTTL        time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL       time.Duration `mapstructure:"REFRESH_TTL"`
	CookieSecret     string        `mapstructure:"COOKIE_SECRET"`
	CookieSecure     bool          `mapstructure:"COOKIE_SECURE"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	RefreshRateLimit int           `mapstructure:"REFRESH_RATE_LIMIT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

var keys = []string{
	"HTTP_ADDR",
	"JWT_SECRET",
	"JWT_ALGORITHM",
	"ACCESS_TTL",
	"REFRESH_TTL",
	"COOKIE_SECRET",
	"COOKIE_SECURE",
	"REDIS_ADDR",
	"DATABASE_URL",
	"REFRESH_RATE_LIMIT",
	"LOG_LEVEL",
}

// String masks both secrets and the database URL.
func (c *ServerConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  HTTPAddr: %s\n", c.HTTPAddr)
	fmt.Fprintf(&sb, "  JWTSecret: %s\n", mask(c.JWTSecret))
	fmt.Fprintf(&sb, "  JWTAlgorithm: %s\n", c.JWTAlgorithm)
	fmt.Fprintf(&sb, "  AccessTTL: %s\n", c.AccessTTL)
	fmt.Fprintf(&sb, "  RefreshTTL: %s\n", c.RefreshTTL)
	fmt.Fprintf(&sb, "  CookieSecret: %s\n", mask(c.CookieSecret))
	fmt.Fprintf(&sb, "  CookieSecure: %v\n", c.CookieSecure)
	fmt.Fprintf(&sb, "  RedisAddr: %s\n", orEmpty(c.RedisAddr))
	fmt.Fprintf(&sb, "  DatabaseURL: %s\n", mask(c.DatabaseURL))
	fmt.Fprintf(&sb, "  RefreshRateLimit: %d\n", c.RefreshRateLimit)
	fmt.Fprintf(&sb, "  LogLevel: %s\n", c.LogLevel)
	return sb.String()
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}

// Load reads .env when present, then the process environment. Values
// already in the environment win over .env.
func Load() (*ServerConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	def := tokenguard.DefaultConfig()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_ALGORITHM", def.JWT.SigningMethod)
	v.SetDefault("ACCESS_TTL", def.JWT.AccessTTL.String())
	v.SetDefault("REFRESH_TTL", def.JWT.RefreshTTL.String())
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REFRESH_RATE_LIMIT", 0)
	v.SetDefault("LOG_LEVEL", "info")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.CookieSecret == "" {
		return nil, ErrMissingCookieSecret
	}
	if cfg.CookieSecret == cfg.JWTSecret {
		return nil, ErrSharedCookieSecret
	}

	return &cfg, nil
}

// EngineConfig maps the server settings onto an engine config. The
// refresh throttle is only switched on when a rate limit is set.
func (c *ServerConfig) EngineConfig() tokenguard.Config {
	cfg := tokenguard.DefaultConfig()
	cfg.JWT.Secret = []byte(c.JWTSecret)
	if c.JWTAlgorithm != "" {
		cfg.JWT.SigningMethod = strings.ToUpper(c.JWTAlgorithm)
	}
	if c.AccessTTL > 0 {
		cfg.JWT.AccessTTL = c.AccessTTL
	}
	if c.RefreshTTL > 0 {
		cfg.JWT.RefreshTTL = c.RefreshTTL
	}
	cfg.Refresh.MaxAttemptsPerIP = c.RefreshRateLimit
	cfg.Audit.Enabled = true
	return cfg
}

func (c *ServerConfig) CookieConfig() cookie.Config {
	cc := cookie.DefaultConfig()
	cc.Secure = c.CookieSecure
	return cc
}
