package tokenguard

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/tokenguard/internal/flows"
)

// Authenticate gates a request on its access token.
//
// The denylist is consulted before the signature: a revoked token fails
// with ErrBlacklisted even when it is also expired or forged. The remaining
// denials are ErrMissingToken, ErrTokenExpired, ErrTokenInvalid and
// ErrUnknownSubject. Backend failures wrap ErrDenylistUnavailable or
// ErrUserLookupFailed.
func (e *Engine) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	res := flows.RunAuthenticate(ctx, token, flows.AuthenticateDeps[User]{
		Denylist:     e.denylist,
		Verify:       e.codec.Verify,
		LookupUser:   e.lookupUser,
		UserNotFound: ErrUserNotFound,
	})

	if res.Failure == flows.AuthenticateFailureNone {
		e.metricInc(MetricAuthenticateSuccess)
		return &AuthResult{
			User:      res.User,
			Subject:   res.Claims.Subject,
			TokenID:   res.Claims.ID,
			ExpiresAt: res.Claims.Expiry(),
		}, nil
	}

	var err error
	switch res.Failure {
	case flows.AuthenticateFailureMissingToken:
		err = ErrMissingToken
	case flows.AuthenticateFailureBlacklisted:
		e.metricInc(MetricAuthenticateBlacklisted)
		err = ErrBlacklisted
	case flows.AuthenticateFailureExpired:
		e.metricInc(MetricAuthenticateExpired)
		err = ErrTokenExpired
	case flows.AuthenticateFailureUnknownSubject:
		e.metricInc(MetricAuthenticateUnknownSubject)
		err = ErrUnknownSubject
	case flows.AuthenticateFailureDenylist:
		e.metricInc(MetricDenylistError)
		e.logger.ErrorContext(ctx, "tokenguard: denylist lookup failed", "error", res.Err)
		err = fmt.Errorf("%w: %v", ErrDenylistUnavailable, res.Err)
	case flows.AuthenticateFailureLookup:
		e.logger.ErrorContext(ctx, "tokenguard: user lookup failed", "user_id", res.Claims.Subject, "error", res.Err)
		err = fmt.Errorf("%w: %v", ErrUserLookupFailed, res.Err)
	default:
		err = fmt.Errorf("%w: %v", ErrTokenInvalid, res.Err)
	}
	e.metricInc(MetricAuthenticateFailure)

	var userID, tokenID string
	if res.Claims != nil {
		userID, tokenID = res.Claims.Subject, res.Claims.ID
	}
	e.emitAudit(ctx, auditEventAuthenticateDenied, false, userID, tokenID, err, nil)

	return nil, err
}
