// Command tokenguard-server serves the refresh, logout and /me endpoints.
//
// Settings come from the environment (see internal/config). Without
// REDIS_ADDR it runs on an in-process miniredis; without DATABASE_URL users
// live in memory and -dev-user seeds one and prints a pair for it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/cookie"
	"github.com/MrEthical07/tokenguard/credential"
	"github.com/MrEthical07/tokenguard/internal/config"
	"github.com/MrEthical07/tokenguard/internal/logging"
	"github.com/MrEthical07/tokenguard/metrics/export/prometheus"
	"github.com/MrEthical07/tokenguard/middleware"
	"github.com/MrEthical07/tokenguard/store/postgres"
)

func main() {
	devUser := flag.String("dev-user", "", "seed this user id in the memory directory and print a token pair")
	flag.Parse()

	if err := run(*devUser); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(devUser string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slogger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	slog.SetDefault(slogger)
	log := logging.NewSlogLogger(slogger).With("component", "server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "config loaded", "config", cfg.String())

	rdb, closeRedis, err := openRedis(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer closeRedis()
	if cfg.RedisAddr == "" {
		log.Warn(ctx, "REDIS_ADDR not set, using in-process miniredis")
	}

	builder := tokenguard.New().
		WithConfig(cfg.EngineConfig()).
		WithRedis(rdb).
		WithAuditSink(tokenguard.NewSlogSink(slogger.With("component", "audit"))).
		WithLogger(slogger)

	var memUsers *tokenguard.MemoryUserProvider
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		users, err := postgres.NewUserStore(pool)
		if err != nil {
			return err
		}
		denied, err := postgres.NewDenylistStore(pool)
		if err != nil {
			return err
		}
		builder = builder.WithUserProvider(users).WithDenylist(denied)
		log.Info(ctx, "using postgres user directory and denylist")
	} else {
		memUsers = tokenguard.NewMemoryUserProvider()
		builder = builder.WithUserProvider(memUsers)
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	report := engine.SecurityReport()
	log.Info(ctx, "engine ready",
		"alg", report.SigningAlgorithm,
		"access_ttl", report.AccessTTL,
		"refresh_ttl", report.RefreshTTL,
		"reject_expired_refresh", report.RejectExpiredRefresh,
		"refresh_throttled", report.RefreshThrottled,
		"lint", report.LintCodes,
	)

	if devUser != "" {
		if memUsers == nil {
			return errors.New("-dev-user needs the memory user directory; unset DATABASE_URL")
		}
		memUsers.Put(tokenguard.User{ID: devUser})
		pair, err := engine.IssuePair(ctx, tokenguard.User{ID: devUser})
		if err != nil {
			return fmt.Errorf("issue dev pair: %w", err)
		}
		log.Info(ctx, "dev pair issued", "user", devUser, "access_token", pair.AccessToken, "refresh_token", pair.RefreshToken)
	}

	signer, err := cookie.NewSigner([]byte(cfg.CookieSecret))
	if err != nil {
		return fmt.Errorf("cookie signer: %w", err)
	}
	extractor := credential.New(signer)

	handler := newRouter(routerDeps{
		engine:    engine,
		extractor: extractor,
		handlers: &middleware.Handlers{
			Engine:    engine,
			Extractor: extractor,
			Signer:    signer,
			Cookies:   cfg.CookieConfig(),
			Logger:    slogger,
		},
		exporter:   prometheus.NewExporter(engine),
		requestLog: true,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}
