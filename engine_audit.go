package tokenguard

import (
	"context"
	"errors"
)

const (
	auditEventTokensIssued         = "tokens_issued"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshFailure       = "refresh_failure"
	auditEventRefreshReuseDetected = "refresh_reuse_detected"
	auditEventAuthenticateDenied   = "authenticate_denied"
	auditEventTokensRevoked        = "tokens_revoked"
)

// AuditErrorCode is the stable string stored in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrMissingToken    AuditErrorCode = "missing_token"
	auditErrRateLimited     AuditErrorCode = "rate_limited"
	auditErrUnknownSubject  AuditErrorCode = "unknown_subject"
	auditErrBlacklisted     AuditErrorCode = "blacklisted"
	auditErrExpired         AuditErrorCode = "token_expired"
	auditErrRevoked         AuditErrorCode = "token_revoked"
	auditErrSubjectMismatch AuditErrorCode = "subject_mismatch"
	auditErrInvalidToken    AuditErrorCode = "invalid_token"
	auditErrUnavailable     AuditErrorCode = "backend_unavailable"
	auditErrInternal        AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tokenID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.currentTime().UTC(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

// auditErrorCode checks specific causes before ErrTokenValidation, which
// every refresh error also matches.
func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrUnknownSubject):
		return auditErrUnknownSubject
	case errors.Is(err, ErrBlacklisted):
		return auditErrBlacklisted
	case errors.Is(err, ErrTokenExpired):
		return auditErrExpired
	case errors.Is(err, ErrTokenRevoked):
		return auditErrRevoked
	case errors.Is(err, ErrSubjectMismatch):
		return auditErrSubjectMismatch
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrDenylistUnavailable),
		errors.Is(err, ErrUserLookupFailed):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
