package tokenguard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MrEthical07/tokenguard/internal/flows"
)

// Revoke denylists every token present in creds, which is how a client
// logs out. At least one token is required and each one must carry a valid
// signature, although expired tokens are accepted. Revoking a token twice
// is not an error.
func (e *Engine) Revoke(ctx context.Context, creds Credentials) error {
	if e == nil {
		return ErrEngineNotReady
	}

	res := flows.RunRevoke(ctx, []string{creds.AccessToken, creds.RefreshToken}, flows.RevokeDeps{
		Verify:   e.codec.Verify,
		Denylist: e.denylist,
	})
	e.metrics.add(MetricDenylistInsert, uint64(res.Revoked))

	switch res.Failure {
	case flows.RevokeFailureNone:
		e.metrics.add(MetricTokensRevoked, uint64(res.Revoked))
		e.emitAudit(ctx, auditEventTokensRevoked, true, res.Subject, "", nil, func() map[string]string {
			return map[string]string{"revoked": strconv.Itoa(res.Revoked)}
		})
		return nil
	case flows.RevokeFailureMissingToken:
		return ErrMissingToken
	case flows.RevokeFailureDenylist:
		e.metricInc(MetricDenylistError)
		e.logger.ErrorContext(ctx, "tokenguard: denylist insert failed", "user_id", res.Subject, "error", res.Err)
		err := fmt.Errorf("%w: %v", ErrDenylistUnavailable, res.Err)
		e.emitAudit(ctx, auditEventTokensRevoked, false, res.Subject, "", err, nil)
		return err
	default:
		err := fmt.Errorf("%w: %v", ErrTokenInvalid, res.Err)
		e.emitAudit(ctx, auditEventTokensRevoked, false, "", "", err, nil)
		return err
	}
}
