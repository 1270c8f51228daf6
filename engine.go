package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/MrEthical07/tokenguard/internal/audit"
	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/jwt"
)

// Engine issues, rotates, revokes and authenticates token pairs. It is
// safe for concurrent use once returned by Builder.Build.
type Engine struct {
	config   Config
	codec    *jwt.Manager
	users    UserProvider
	denylist denylist.Store
	limiter  *rate.Limiter
	audit    *audit.Dispatcher
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Close flushes pending audit events. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return e.metrics.Snapshot()
}

// Algorithm reports the JWS algorithm every token is signed with.
func (e *Engine) Algorithm() string {
	if e == nil {
		return ""
	}
	return e.codec.Algorithm()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// IssuePair mints a fresh access and refresh token for user. The caller is
// responsible for having authenticated the user.
func (e *Engine) IssuePair(ctx context.Context, user User) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	pair, err := e.issue(user)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.logger.ErrorContext(ctx, "tokenguard: issue failed", "user_id", user.ID, "error", err)
		return TokenPair{}, err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventTokensIssued, true, user.ID, "", nil, nil)
	return pair, nil
}

func (e *Engine) issue(user User) (TokenPair, error) {
	if user.ID == "" {
		return TokenPair{}, errors.New("user id is required")
	}

	access, accessExp, err := e.codec.Sign(user.ID, jwt.KindAccess)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := e.codec.Sign(user.ID, jwt.KindRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:                access,
		RefreshToken:               refresh,
		AccessTokenExpirationDate:  accessExp.UnixMilli(),
		RefreshTokenExpirationDate: refreshExp.UnixMilli(),
	}, nil
}

func (e *Engine) lookupUser(ctx context.Context, id string) (User, error) {
	return e.users.GetUserByID(ctx, id)
}

func (e *Engine) currentTime() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}
