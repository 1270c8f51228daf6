// Command denylist-reaper deletes Postgres denylist rows whose token has
// expired. Redis entries expire on their own and need no reaping.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/internal/logging"
	"github.com/MrEthical07/tokenguard/store/postgres"
)

// purger is the part of *postgres.DenylistStore the loop needs.
type purger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	var (
		dsn      = flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
		interval = flag.Duration("interval", 10*time.Minute, "time between purges")
		grace    = flag.Duration("grace", tokenguard.MaxLeeway, "keep rows this long past their expiry; never below the JWT leeway")
		once     = flag.Bool("once", false, "purge once and exit")
		level    = flag.String("log-level", os.Getenv("LOG_LEVEL"), "debug, info, warn or error")
	)
	flag.Parse()

	log := logging.NewSlogLogger(logging.NewJSON(os.Stdout, *level)).With("component", "denylist-reaper")

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "database url is required (-database-url or DATABASE_URL)")
		os.Exit(2)
	}

	if *grace < tokenguard.MaxLeeway {
		log.Warn(context.Background(), "grace is below the largest allowed JWT leeway; revoked tokens may verify again", "grace", *grace, "max_leeway", tokenguard.MaxLeeway)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, *dsn)
	if err != nil {
		log.Error(ctx, "open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store, err := postgres.NewDenylistStore(pool)
	if err != nil {
		log.Error(ctx, "denylist store", "error", err)
		os.Exit(1)
	}

	if *once {
		if _, err := purge(ctx, store, log, time.Now, *grace); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := loop(ctx, store, log, *interval, *grace); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "reaper stopped", "error", err)
		os.Exit(1)
	}
}

// loop purges immediately and then on every tick until ctx ends. A failed
// purge is logged and retried on the next tick.
func loop(ctx context.Context, store purger, log logging.Logger, interval, grace time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = purge(ctx, store, log, time.Now, grace)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func purge(ctx context.Context, store purger, log logging.Logger, now func() time.Time, grace time.Duration) (int64, error) {
	cutoff := now().Add(-grace)
	n, err := store.PurgeExpired(ctx, cutoff)
	if err != nil {
		log.Warn(ctx, "purge failed", "error", err)
		return 0, err
	}
	log.Info(ctx, "purged expired denylist rows", "deleted", n, "cutoff", cutoff)
	return n, nil
}
