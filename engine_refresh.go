package tokenguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/tokenguard/internal/flows"
	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/jwt"
)

// Refresh rotates a token pair. Both presented tokens are denylisted before
// the new pair is minted and published through transport, so a pair can be
// rotated at most once.
//
// Every failure clears the transport and returns an error matching
// ErrTokenValidation together with the specific cause, for example
// ErrTokenRevoked when the pair was already used. A throttled call matches
// ErrRefreshRateLimited and leaves the transport untouched.
//
// transport may be nil when the caller delivers the pair itself.
func (e *Engine) Refresh(ctx context.Context, creds Credentials, transport TokenTransport) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	deps := flows.RefreshDeps[User, TokenPair]{
		Throttle:        e.throttleRefresh,
		DecodeUntrusted: jwt.DecodeUntrusted,
		Verify:          e.codec.Verify,
		LookupUser:      e.lookupUser,
		UserNotFound:    ErrUserNotFound,
		Denylist:        e.denylist,
		Issue: func(_ context.Context, user User) (TokenPair, error) {
			return e.issue(user)
		},
		RejectExpiredRefresh: e.config.JWT.RejectExpiredRefresh,
		Now:                  e.now,
	}
	if transport != nil {
		deps.Publish = transport.Publish
		deps.Clear = transport.Clear
	}

	res := flows.RunRefresh(ctx, creds.AccessToken, creds.RefreshToken, deps)
	if res.Failure == flows.RefreshFailureNone {
		e.metricInc(MetricRefreshSuccess)
		e.metricInc(MetricIssueSuccess)
		e.countPairDenylisted()
		e.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, "", nil, nil)
		return res.Pair, nil
	}

	err := e.refreshError(res.Failure, res.Err)
	e.recordRefreshFailure(ctx, res.Failure, res.State, res.UserID, err)
	return TokenPair{}, err
}

func (e *Engine) countPairDenylisted() {
	e.metricInc(MetricDenylistInsert)
	e.metricInc(MetricDenylistInsert)
}

func (e *Engine) throttleRefresh(ctx context.Context) error {
	err := e.limiter.CheckRefresh(ctx, clientIPFromContext(ctx))
	if err == nil || errors.Is(err, rate.ErrRateLimited) {
		return err
	}
	// A throttle outage must not lock users out.
	e.logger.WarnContext(ctx, "tokenguard: refresh throttle unavailable", "error", err)
	return nil
}

func (e *Engine) refreshError(kind flows.RefreshFailureKind, cause error) error {
	var sentinel error
	switch kind {
	case flows.RefreshFailureRateLimited:
		return fmt.Errorf("%w: %w", ErrTokenValidation, ErrRefreshRateLimited)
	case flows.RefreshFailureMissingToken:
		sentinel = ErrMissingToken
	case flows.RefreshFailureUnknownSubject:
		sentinel = ErrUnknownSubject
	case flows.RefreshFailureLookup:
		sentinel = ErrUserLookupFailed
	case flows.RefreshFailureDecode, flows.RefreshFailureVerify, flows.RefreshFailureWrongKind:
		sentinel = ErrTokenInvalid
	case flows.RefreshFailureSubjectMismatch:
		sentinel = ErrSubjectMismatch
	case flows.RefreshFailureExpired:
		sentinel = ErrTokenExpired
	case flows.RefreshFailureRevoked:
		sentinel = ErrTokenRevoked
	case flows.RefreshFailureDenylist:
		sentinel = ErrDenylistUnavailable
	default:
		if cause == nil {
			return ErrTokenValidation
		}
		return fmt.Errorf("%w: %w", ErrTokenValidation, cause)
	}

	if cause == nil || errors.Is(cause, sentinel) {
		return fmt.Errorf("%w: %w", ErrTokenValidation, sentinel)
	}
	return fmt.Errorf("%w: %w: %v", ErrTokenValidation, sentinel, cause)
}

func (e *Engine) recordRefreshFailure(ctx context.Context, kind flows.RefreshFailureKind, state flows.RefreshState, userID string, err error) {
	e.metricInc(MetricRefreshFailure)

	eventType := auditEventRefreshFailure
	switch kind {
	case flows.RefreshFailureRateLimited:
		e.metricInc(MetricRefreshRateLimited)
	case flows.RefreshFailureMissingToken:
		e.metricInc(MetricRefreshMissingToken)
	case flows.RefreshFailureUnknownSubject:
		e.metricInc(MetricRefreshUnknownSubject)
	case flows.RefreshFailureRevoked:
		e.metricInc(MetricRefreshReuseDetected)
		eventType = auditEventRefreshReuseDetected
	case flows.RefreshFailureDenylist:
		e.metricInc(MetricDenylistError)
		e.logger.ErrorContext(ctx, "tokenguard: denylist insert failed", "user_id", userID, "error", err)
	case flows.RefreshFailureLookup:
		e.logger.ErrorContext(ctx, "tokenguard: user lookup failed", "user_id", userID, "error", err)
	case flows.RefreshFailureIssue:
		e.metricInc(MetricIssueFailure)
		e.logger.ErrorContext(ctx, "tokenguard: issue failed during refresh", "user_id", userID, "error", err)
	case flows.RefreshFailurePublish:
		e.logger.WarnContext(ctx, "tokenguard: publishing refreshed pair failed", "user_id", userID, "error", err)
	default:
		e.metricInc(MetricRefreshInvalidToken)
	}
	if state >= flows.RefreshOldTokensRevoked {
		e.countPairDenylisted()
	}

	e.emitAudit(ctx, eventType, false, userID, "", err, func() map[string]string {
		return map[string]string{"state": state.String()}
	})
}
