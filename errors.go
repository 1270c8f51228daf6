package tokenguard

import "errors"

var (
	// ErrMissingToken means a required credential was absent from the request.
	ErrMissingToken = errors.New("missing token")
	// ErrTokenValidation is the umbrella error of every failed refresh. The
	// specific cause is wrapped alongside it.
	ErrTokenValidation = errors.New("refresh token validation error")
	// ErrUnknownSubject means a token names a user the directory does not know.
	ErrUnknownSubject = errors.New("unknown token subject")
	// ErrBlacklisted means the presented token was revoked.
	ErrBlacklisted = errors.New("token is blacklisted")
	// ErrTokenExpired means the token's exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, wrong algorithms, malformed
	// input and tokens of the wrong kind.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenRevoked is returned when a refresh presents a pair that was
	// already rotated or logged out.
	ErrTokenRevoked = errors.New("token already revoked")
	// ErrSubjectMismatch is returned when the two tokens of a pair name different users.
	ErrSubjectMismatch = errors.New("token subjects differ")
	// ErrRefreshRateLimited is returned when the refresh throttle rejects a call.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrUserNotFound is what UserProvider implementations return for unknown ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrDenylistUnavailable wraps denylist backend failures.
	ErrDenylistUnavailable = errors.New("denylist unavailable")
	// ErrUserLookupFailed wraps user directory backend failures.
	ErrUserLookupFailed = errors.New("user lookup failed")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
